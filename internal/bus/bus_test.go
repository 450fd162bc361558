package bus

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dsv-cli/dsv/internal/dsverr"
	"github.com/dsv-cli/dsv/internal/record"
)

func TestBusSendRecvOrder(t *testing.T) {
	b := New(context.Background(), 4)
	go func() {
		_ = b.Send(HeaderMsg(record.RowFromStrings("a", "b")))
		_ = b.Send(RowMsg(record.RowFromStrings("1", "2")))
		_ = b.Send(EofMsg())
		b.CloseSend()
	}()

	var kinds []Kind
	for {
		msg, ok := b.Recv()
		if !ok {
			break
		}
		kinds = append(kinds, msg.Kind)
	}
	require.Equal(t, []Kind{Header, Row, Eof}, kinds)
}

func TestBusCancelConsumerSignalsUpstreamClosed(t *testing.T) {
	b := New(context.Background(), 0)
	b.CancelConsumer()
	err := b.Send(RowMsg(record.RowFromStrings("x")))
	require.True(t, dsverr.IsUpstreamClosed(err), "expected UpstreamClosed, got %v", err)
}

func TestProcessingBaseCloneIsIndependent(t *testing.T) {
	opts := &Options{}
	opts.PostProcess()
	b1 := NewProcessingBase(opts, New(context.Background(), 1))
	b1.SetHeaderLen(3)

	b2 := b1.Clone(New(context.Background(), 1))
	b2.SetHeaderLen(5)

	require.Equal(t, 3, b1.HeaderLen, "clone mutated parent HeaderLen")
	require.Same(t, b1.Opts, b2.Opts, "expected shared Opts pointer across clones")
}
