package policy

import (
	gomock "github.com/golang/mock/gomock"
	. "github.com/onsi/ginkgo/v2"

	"github.com/sarchlab/hexloc/phone"
)

var _ = Describe("PointerManager trace logging", func() {
	It("emits a trace line through the configured Logger on arrival", func() {
		ctrl := gomock.NewController(GinkgoT())
		defer ctrl.Finish()

		log := NewMockLogger(ctrl)
		log.EXPECT().Printf(gomock.Any(), gomock.Any()).MinTimes(1)

		_, leaves := buildSmallTree()
		mgr := NewPointerManager(log)
		mgr.Arrive(&phone.Phone{ID: "A"}, leaves[0])
	})
})
