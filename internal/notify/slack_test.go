package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostSendsFormattedText(t *testing.T) {
	var got slackPayload
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	NewSlack(srv.URL).Post(context.Background(), "payout %s chained for %s USDC", "payout-1", "110")

	assert.Equal(t, "payout payout-1 chained for 110 USDC", got.Text)
}

func TestPostSwallowsServerErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "no_service", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	// Must not panic or propagate anything.
	NewSlack(srv.URL).Post(context.Background(), "hello")
}

func TestPostNoopWithoutURL(t *testing.T) {
	NewSlack("").Post(context.Background(), "dropped")

	var s *Slack
	s.Post(context.Background(), "nil receiver is safe")
}
