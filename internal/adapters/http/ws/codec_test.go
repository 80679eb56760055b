package ws_test

import (
	"errors"
	"testing"

	"github.com/gorilla/websocket"
	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/hearts/internal/adapters/http/ws"
	"github.com/okian/hearts/internal/domain/model"
)

func TestCodecFor(t *testing.T) {
	Convey("Given negotiated subprotocols", t, func() {
		Convey("Then no subprotocol should mean JSON", func() {
			c, err := ws.CodecFor("")
			So(err, ShouldBeNil)
			So(c.Name(), ShouldEqual, ws.SubprotocolJSON)
			So(c.MessageType(), ShouldEqual, websocket.TextMessage)
		})

		Convey("Then the msgpack subprotocol should use binary frames", func() {
			c, err := ws.CodecFor(ws.SubprotocolMsgpack)
			So(err, ShouldBeNil)
			So(c.Name(), ShouldEqual, ws.SubprotocolMsgpack)
			So(c.MessageType(), ShouldEqual, websocket.BinaryMessage)
		})

		Convey("Then an unknown subprotocol should be rejected", func() {
			_, err := ws.CodecFor("hearts.v2+xml")
			So(errors.Is(err, ws.ErrUnsupportedCodec), ShouldBeTrue)
		})
	})
}

func TestCodecs(t *testing.T) {
	for _, codec := range []ws.Codec{ws.JSONCodec{}, ws.MsgpackCodec{}} {
		Convey("Given the "+codec.Name()+" codec", t, func() {
			Convey("When a collect message is framed and read back", func() {
				data, err := codec.Encode(ws.Envelope{T: ws.MsgCollect, Data: ws.CollectMsg{ID: "h7"}})
				So(err, ShouldBeNil)
				in, err := codec.Decode(data)
				So(err, ShouldBeNil)

				Convey("Then the type and payload should survive", func() {
					So(in.T, ShouldEqual, ws.MsgCollect)
					var m ws.CollectMsg
					So(in.Bind(&m), ShouldBeNil)
					So(m.ID, ShouldEqual, "h7")
				})
			})

			Convey("When a message carries no payload", func() {
				data, err := codec.Encode(ws.Envelope{T: ws.MsgStart})
				So(err, ShouldBeNil)
				in, err := codec.Decode(data)
				So(err, ShouldBeNil)

				Convey("Then binding should leave the target untouched", func() {
					m := ws.SoundMsg{On: true}
					So(in.Bind(&m), ShouldBeNil)
					So(m.On, ShouldBeTrue)
				})
			})

			Convey("When a nested model value is framed", func() {
				target := model.Target{ID: "h1", X: 12.5, Y: 40, Glyph: "💗", BornAtMs: 1000}
				data, err := codec.Encode(ws.Envelope{T: ws.MsgSpawn, Data: target})
				So(err, ShouldBeNil)
				in, err := codec.Decode(data)
				So(err, ShouldBeNil)

				Convey("Then it should decode with the same field names", func() {
					var got model.Target
					So(in.Bind(&got), ShouldBeNil)
					So(got, ShouldResemble, target)
				})
			})

			Convey("When the frame is garbage", func() {
				_, err := codec.Decode([]byte{0xc1, '{'})

				Convey("Then decoding should fail", func() {
					So(err, ShouldNotBeNil)
				})
			})
		})
	}
}
