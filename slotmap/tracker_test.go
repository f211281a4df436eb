package slotmap_test

import (
	"github.com/dsearch/dsearch/slotmap"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Tracker", func() {
	var tr *slotmap.Tracker

	BeforeEach(func() {
		tr = slotmap.New()
	})

	It("bumps key_space_version exactly once on SetLocal", func() {
		tr.SetLocal([]slotmap.Range{{Start: 0, End: 99}})
		Expect(tr.Version()).To(Equal(uint32(1)))
	})

	It("merges adjacent ranges across a CompleteImport into local", func() {
		tr.SetLocal([]slotmap.Range{{Start: 5, End: 99}})
		tr.StartImport([]slotmap.Range{{Start: 100, End: 199}})
		tr.CompleteImport([]slotmap.Range{{Start: 100, End: 199}})
		Expect(tr.Local()).To(Equal([]slotmap.Range{{Start: 5, End: 199}}))
	})

	It("reports stable current version when query is fully local and not partial", func() {
		tr.SetLocal([]slotmap.Range{{Start: 0, End: 99}})
		avail, ok := tr.CheckAvailability([]slotmap.Range{{Start: 10, End: 20}})
		Expect(ok).To(BeTrue())
		Expect(avail.Unstable).To(BeFalse())
		Expect(avail.Version).To(Equal(tr.Version()))
	})

	It("reports unstable version 0 when query overlaps fully-available or partial", func() {
		tr.SetLocal([]slotmap.Range{{Start: 0, End: 99}})
		tr.CompleteMigration([]slotmap.Range{{Start: 0, End: 49}})
		avail, ok := tr.CheckAvailability([]slotmap.Range{{Start: 0, End: 99}})
		Expect(ok).To(BeTrue())
		Expect(avail.Unstable).To(BeTrue())
		Expect(avail.Version).To(Equal(uint32(0)))
	})

	It("reports not-ok when a slot is absent from local and fully-available", func() {
		tr.SetLocal([]slotmap.Range{{Start: 0, End: 99}})
		_, ok := tr.CheckAvailability([]slotmap.Range{{Start: 200, End: 300}})
		Expect(ok).To(BeFalse())
	})

	It("never bumps version on CompleteMigration or CompleteTrim", func() {
		tr.SetLocal([]slotmap.Range{{Start: 0, End: 99}})
		v0 := tr.Version()
		tr.CompleteMigration([]slotmap.Range{{Start: 0, End: 49}})
		Expect(tr.Version()).To(Equal(v0))
		tr.StartTrim([]slotmap.Range{{Start: 0, End: 49}})
		v1 := tr.Version()
		Expect(v1).To(Equal(v0 + 1))
		tr.CompleteTrim([]slotmap.Range{{Start: 0, End: 49}})
		Expect(tr.Version()).To(Equal(v1))
	})

	It("panics on StartImport overlapping local (caller bug, spec SS4.C)", func() {
		tr.SetLocal([]slotmap.Range{{Start: 0, End: 99}})
		Expect(func() {
			tr.StartImport([]slotmap.Range{{Start: 50, End: 150}})
		}).To(PanicWith(ContainSubstring("overlap")))
	})
})

var _ = Describe("Canonicalize", func() {
	It("sorts, merges adjacent and overlapping ranges", func() {
		in := []slotmap.Range{{20, 30}, {0, 9}, {10, 19}, {40, 50}}
		out := slotmap.Canonicalize(in)
		Expect(out).To(Equal([]slotmap.Range{{0, 30}, {40, 50}}))
	})
})
