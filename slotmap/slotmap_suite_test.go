package slotmap_test

import (
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestSlotmap(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "slotmap suite")
}
