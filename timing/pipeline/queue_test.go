package pipeline_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/rvscalar/timing/pipeline"
)

var _ = Describe("Queue", func() {
	var q *pipeline.Queue[int]

	BeforeEach(func() {
		q = pipeline.NewQueue[int](4)
	})

	It("should reject the push beyond capacity", func() {
		for i := 0; i < 4; i++ {
			Expect(q.Push(i)).To(BeTrue())
		}

		Expect(q.Full()).To(BeTrue())
		Expect(q.Push(4)).To(BeFalse())
		Expect(q.Len()).To(Equal(4))
	})

	It("should pop in insertion order", func() {
		q.Push(1)
		q.Push(2)

		v, ok := q.Pop()
		Expect(ok).To(BeTrue())
		Expect(v).To(Equal(1))

		v, _ = q.Peek()
		Expect(v).To(Equal(2))
	})

	It("should report empty on pop from an empty queue", func() {
		_, ok := q.Pop()
		Expect(ok).To(BeFalse())
		Expect(q.Empty()).To(BeTrue())
	})

	It("should pop at most the queued items in a batch", func() {
		q.Push(1)
		q.Push(2)
		q.Push(3)

		Expect(q.PopBatch(2)).To(Equal([]int{1, 2}))
		Expect(q.PopBatch(5)).To(Equal([]int{3}))
		Expect(q.Empty()).To(BeTrue())
	})

	It("should remove from the middle and keep order", func() {
		q.Push(1)
		q.Push(2)
		q.Push(3)

		Expect(q.RemoveAt(1)).To(Equal(2))
		Expect(q.At(0)).To(Equal(1))
		Expect(q.At(1)).To(Equal(3))
		Expect(q.Push(4)).To(BeTrue())
		Expect(q.Push(5)).To(BeTrue())
		Expect(q.Full()).To(BeTrue())
	})

	It("should drop everything on clear", func() {
		q.Push(1)
		q.Clear()

		Expect(q.Len()).To(Equal(0))
		Expect(q.Cap()).To(Equal(4))
	})
})
