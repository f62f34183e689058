package department_test

import (
	"testing"

	"github.com/frahmantamala/kudos-points/internal/department"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestDepartment(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Department Suite")
}

func sum(shares []department.Share) int {
	total := 0
	for _, s := range shares {
		total += s.Points
	}
	return total
}

var _ = Describe("SplitEvenly", func() {
	ids := []string{"a", "b", "c", "d", "e", "f", "g"}

	It("gives the remainder to the first accounts", func() {
		shares := department.SplitEvenly(ids, 100)
		Expect(shares).To(HaveLen(7))
		Expect(sum(shares)).To(Equal(100))
		Expect(shares[0]).To(Equal(department.Share{AccountID: "a", Points: 15}))
		Expect(shares[1].Points).To(Equal(15))
		for _, s := range shares[2:] {
			Expect(s.Points).To(Equal(14))
		}
	})

	It("deducts with a negative total", func() {
		shares := department.SplitEvenly(ids, -10)
		Expect(sum(shares)).To(Equal(-10))
		Expect(shares[0].Points).To(Equal(-2))
		Expect(shares[2].Points).To(Equal(-2))
		Expect(shares[3].Points).To(Equal(-1))
	})

	DescribeTable("always sums to the total",
		func(total, n int) {
			Expect(sum(department.SplitEvenly(ids[:n], total))).To(Equal(total))
		},
		Entry("fewer points than members", 3, 7),
		Entry("exact multiple", 21, 7),
		Entry("single member", 5, 1),
		Entry("negative smaller than members", -3, 5),
	)

	It("returns nothing for no accounts", func() {
		Expect(department.SplitEvenly(nil, 10)).To(BeEmpty())
	})
})
