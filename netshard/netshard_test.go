package netshard_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dsearch/dsearch/netshard"
	"github.com/dsearch/dsearch/rcmd"
	"github.com/dsearch/dsearch/reply"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func echoDecoder(body []byte) (reply.Reply, error) {
	return reply.StringS(string(body)), nil
}

func TestSendRoundTripsThroughHTTP(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		w.Write([]byte("echo:" + string(b)))
	}))
	defer srv.Close()

	targets := []netshard.Target{{URL: srv.URL, StartSlot: 0, Master: true}}
	ss := netshard.New(targets, srv.Client(), echoDecoder, false)
	defer ss.Close()

	cmd := rcmd.New(2, rcmd.RootRead, "_FT.SEARCH", "idx", "hello")
	done := make(chan reply.Reply, 1)
	ss.Send(0, cmd, func(r reply.Reply, err error) {
		require.NoError(t, err)
		done <- r
	})

	select {
	case r := <-done:
		assert.Contains(t, r.Str(), "echo:")
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for callback")
	}
}

func TestSendAfterCloseErrorsCallback(t *testing.T) {
	targets := []netshard.Target{{URL: "http://127.0.0.1:0", StartSlot: 0, Master: true}}
	ss := netshard.New(targets, nil, echoDecoder, false)
	ss.Close()

	done := make(chan error, 1)
	cmd := rcmd.New(2, rcmd.RootRead, "_FT.SEARCH")
	ss.Send(0, cmd, func(_ reply.Reply, err error) { done <- err })

	select {
	case err := <-done:
		assert.Error(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for callback")
	}
}

func TestCountIsMasterStartSlot(t *testing.T) {
	targets := []netshard.Target{
		{URL: "http://a", StartSlot: 0, Master: true},
		{URL: "http://b", StartSlot: 100, Master: false},
	}
	ss := netshard.New(targets, nil, echoDecoder, false)
	defer ss.Close()

	assert.Equal(t, 2, ss.Count())
	assert.True(t, ss.IsMaster(0))
	assert.False(t, ss.IsMaster(1))
	assert.EqualValues(t, 100, ss.StartSlot(1))
}
