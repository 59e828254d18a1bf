package escrow

import (
	"testing"

	"github.com/iov-one/zkescrow"
	"github.com/iov-one/zkescrow/errors"
	. "github.com/smartystreets/goconvey/convey"
)

func TestEscrowCodec(t *testing.T) {
	Convey("Given an open escrow", t, func() {
		e := Escrow{
			Amount:      1000,
			Hash:        Digest([]byte("abc")),
			Initializer: zkescrow.Address{0: 7, 31: 7},
		}
		copy(e.Seed[:], "s1")
		So(e.Validate(), ShouldBeNil)

		buf := make([]byte, EscrowSpace)
		So(e.MarshalTo(buf), ShouldBeNil)

		Convey("the layout is positional", func() {
			So(string(buf[0:2]), ShouldEqual, "s1")
			So(buf[32:40], ShouldResemble, []byte{0xe8, 0x03, 0, 0, 0, 0, 0, 0})
			So(string(buf[40:104]), ShouldEqual, string(e.Hash[:]))
			So(buf[104], ShouldEqual, 0)
			So(buf[105], ShouldEqual, 0)
			So(buf[106:138], ShouldResemble, make([]byte, 32))
			So(buf[138:170], ShouldResemble, e.Initializer[:])
		})

		Convey("it is read back unchanged", func() {
			var got Escrow
			So(got.Unmarshal(buf), ShouldBeNil)
			So(got, ShouldResemble, e)
		})

		Convey("once claimed the receiver is stored", func() {
			receiver := zkescrow.Address{0: 1, 31: 2}
			e.IsClaimed = true
			e.Amount = 0
			e.Receiver = &receiver
			So(e.Validate(), ShouldBeNil)
			So(e.MarshalTo(buf), ShouldBeNil)
			So(buf[104], ShouldEqual, 1)
			So(buf[105], ShouldEqual, 1)

			var got Escrow
			So(got.Unmarshal(buf), ShouldBeNil)
			So(got, ShouldResemble, e)
		})

		Convey("short buffers are rejected", func() {
			So(errors.ErrBufferTooSmall.Is(e.MarshalTo(make([]byte, EscrowSize-1))), ShouldBeTrue)
			var got Escrow
			So(errors.ErrBufferTooSmall.Is(got.Unmarshal(buf[:EscrowSize-1])), ShouldBeTrue)
		})

		Convey("invalid flags are rejected", func() {
			buf[105] = 3
			var got Escrow
			So(errors.ErrInvalidState.Is(got.Unmarshal(buf)), ShouldBeTrue)
		})
	})

	Convey("Receiver and claimed flag go together", t, func() {
		receiver := zkescrow.Address{1}
		So(errors.ErrInvalidState.Is((&Escrow{IsClaimed: true}).Validate()), ShouldBeTrue)
		So(errors.ErrInvalidState.Is((&Escrow{Receiver: &receiver}).Validate()), ShouldBeTrue)
	})
}

func TestTrackerCodec(t *testing.T) {
	Convey("A tracker round trips", t, func() {
		tr := ExecutionTracker{ExecutionAccount: zkescrow.Address{0: 0xEE, 31: 0x11}}
		buf := make([]byte, TrackerSpace)
		So(tr.MarshalTo(buf), ShouldBeNil)
		So(buf[:TrackerSize], ShouldResemble, tr.ExecutionAccount[:])

		var got ExecutionTracker
		So(got.Unmarshal(buf), ShouldBeNil)
		So(got, ShouldResemble, tr)

		So(errors.ErrBufferTooSmall.Is(tr.MarshalTo(buf[:TrackerSize-1])), ShouldBeTrue)
		So(errors.ErrBufferTooSmall.Is(got.Unmarshal(buf[:TrackerSize-1])), ShouldBeTrue)
	})

	Convey("Sizes match the account layout", t, func() {
		So(EscrowSize, ShouldEqual, 170)
		So(EscrowSpace, ShouldEqual, 270)
		So(TrackerSize, ShouldEqual, 32)
		So(TrackerSpace, ShouldEqual, 132)
	})
}
