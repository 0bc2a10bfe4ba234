package scheduler

import (
    "hash/fnv"
    "sort"
    "sync"
)

// lockStripes fixes the size of the stripe array.  Collisions between
// unrelated keys only cost extra serialization, never correctness.
const lockStripes = 64

// keyedLock serializes check-then-write sequences per contention key
// (trainer/date/slot and member/date) without a lock per booking.  Keys
// hash onto a fixed stripe array; multi-key acquisition happens in
// ascending stripe order so two callers can never deadlock.
type keyedLock struct {
    stripes [lockStripes]sync.Mutex
}

func stripeIndex(key string) int {
    h := fnv.New32a()
    _, _ = h.Write([]byte(key))
    return int(h.Sum32() % lockStripes)
}

// lock acquires the stripes for all keys and returns the release
// function.  Duplicate stripes are locked once.
func (k *keyedLock) lock(keys ...string) func() {
    idx := make([]int, 0, len(keys))
    for _, key := range keys {
        idx = append(idx, stripeIndex(key))
    }
    sort.Ints(idx)
    held := idx[:0]
    prev := -1
    for _, i := range idx {
        if i == prev {
            continue
        }
        k.stripes[i].Lock()
        held = append(held, i)
        prev = i
    }
    return func() {
        for j := len(held) - 1; j >= 0; j-- {
            k.stripes[held[j]].Unlock()
        }
    }
}
