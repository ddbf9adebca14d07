package http

import (
	"net/http/httptest"
	stdhttp "net/http"
	"testing"
)

func newTS(t *testing.T, server *stdhttp.Server) *httptest.Server {
	t.Helper()
	ts := httptest.NewServer(server.Handler)
	t.Cleanup(ts.Close)
	return ts
}
