package service

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestKeyedLockSerialisesSameKey(t *testing.T) {
	k := newKeyedLock()
	unlock := k.Lock("a")

	acquired := make(chan struct{})
	go func() {
		u := k.Lock("a")
		close(acquired)
		u()
	}()

	select {
	case <-acquired:
		t.Fatal("second holder got the lock while the first still held it")
	case <-time.After(50 * time.Millisecond):
	}
	unlock()
	<-acquired
}

func TestKeyedLockIndependentKeys(t *testing.T) {
	k := newKeyedLock()
	unlockA := k.Lock("a")
	defer unlockA()

	done := make(chan struct{})
	go func() {
		k.Lock("b")()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("lock on b blocked behind a")
	}
}

func TestKeyedLockReleasesEntries(t *testing.T) {
	k := newKeyedLock()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			k.Lock("x")()
		}()
	}
	wg.Wait()
	assert.Equal(t, 0, k.size())
}

func TestNewBookingID(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 200; i++ {
		id, err := NewBookingID()
		assert.NoError(t, err)
		assert.True(t, ValidBookingID(id), id)
		seen[id] = true
	}
	assert.Len(t, seen, 200)
	assert.False(t, ValidBookingID("abcde12345"))
	assert.False(t, ValidBookingID("ABC"))
}
