/*
 * MIT License
 *
 * Copyright (c) 2020 Nicolas JUHEL
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 *
 */

package atomic_test

import (
	"sync"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	libatm "github/sabouaram/tupledb/atomic"
)

// MapTyped[uint32, *pendingEntry] and MapTyped[uint64, error] are what
// transport/pending.go and errors/pool build on respectively, so this suite
// covers the one exported type thoroughly instead of a generic atomic
// toolkit's full surface.

type entry struct {
	id int
}

var _ = Describe("MapTyped[K, V]", func() {
	It("supports Store/Load/Delete", func() {
		m := libatm.NewMapTyped[uint64, *entry]()

		m.Store(1, &entry{id: 1})
		v, ok := m.Load(1)
		Expect(ok).To(BeTrue())
		Expect(v.id).To(Equal(1))

		m.Delete(1)
		_, ok = m.Load(1)
		Expect(ok).To(BeFalse())
	})

	It("LoadOrStore reports whether the existing value was kept", func() {
		m := libatm.NewMapTyped[uint64, *entry]()

		act, loaded := m.LoadOrStore(1, &entry{id: 1})
		Expect(loaded).To(BeFalse())
		Expect(act.id).To(Equal(1))

		act, loaded = m.LoadOrStore(1, &entry{id: 2})
		Expect(loaded).To(BeTrue())
		Expect(act.id).To(Equal(1))
	})

	It("LoadAndDelete removes the entry and returns it", func() {
		m := libatm.NewMapTyped[uint64, *entry]()
		m.Store(1, &entry{id: 7})

		v, loaded := m.LoadAndDelete(1)
		Expect(loaded).To(BeTrue())
		Expect(v.id).To(Equal(7))

		_, loaded = m.LoadAndDelete(1)
		Expect(loaded).To(BeFalse())
	})

	It("Range visits every stored entry exactly once", func() {
		m := libatm.NewMapTyped[uint64, *entry]()
		for i := uint64(1); i <= 5; i++ {
			m.Store(i, &entry{id: int(i)})
		}

		seen := map[uint64]bool{}
		m.Range(func(k uint64, v *entry) bool {
			seen[k] = true
			return true
		})
		Expect(seen).To(HaveLen(5))
	})

	It("is safe for concurrent Store/Load/Delete", func() {
		m := libatm.NewMapTyped[uint64, *entry]()
		var wg sync.WaitGroup

		for i := uint64(0); i < 100; i++ {
			wg.Add(1)
			go func(id uint64) {
				defer wg.Done()
				m.Store(id, &entry{id: int(id)})
				m.Load(id)
				m.Delete(id)
			}(i)
		}
		wg.Wait()
	})

	It("CompareAndSwap only swaps when the current value matches old", func() {
		m := libatm.NewMapTyped[uint64, *entry]()
		m.Store(1, &entry{id: 1})

		Expect(m.CompareAndSwap(1, &entry{id: 99}, &entry{id: 2})).To(BeFalse())
		v, _ := m.Load(1)
		Expect(v.id).To(Equal(1))

		cur, _ := m.Load(1)
		Expect(m.CompareAndSwap(1, cur, &entry{id: 2})).To(BeTrue())
		v, _ = m.Load(1)
		Expect(v.id).To(Equal(2))
	})
})
