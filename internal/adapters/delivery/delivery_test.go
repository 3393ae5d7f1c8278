package delivery

import (
	"context"
	"database/sql"
	"io"
	"net/http"
	"net/http/httptest"
	"net/smtp"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/sipsyai/agentflow/internal/core/flow"
)

func TestResponseSink(t *testing.T) {
	sink := NewResponseSink()

	out, err := sink.Deliver(context.Background(), &flow.OutputConfig{Format: flow.FormatText}, []byte("hello"), "text/plain")
	require.NoError(t, err)
	assert.Equal(t, "hello", out)

	out, err = sink.Deliver(context.Background(), &flow.OutputConfig{Format: flow.FormatZip}, []byte{0x50, 0x4b}, "application/zip")
	require.NoError(t, err)
	assert.Equal(t, []byte{0x50, 0x4b}, out)
}

func TestFileSink(t *testing.T) {
	base := t.TempDir()
	sink := NewFileSink(base)

	t.Run("writes named file", func(t *testing.T) {
		out, err := sink.Deliver(context.Background(), &flow.OutputConfig{
			Format:   flow.FormatMarkdown,
			FilePath: "reports",
			FileName: "summary.md",
		}, []byte("# Summary"), "text/markdown")
		require.NoError(t, err)

		info, ok := out.(map[string]any)
		require.True(t, ok)
		path := info["path"].(string)
		assert.Equal(t, filepath.Join(base, "reports", "summary.md"), path)

		written, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, "# Summary", string(written))
	})

	t.Run("derives name from format", func(t *testing.T) {
		out, err := sink.Deliver(context.Background(), &flow.OutputConfig{
			Format: flow.FormatJSON,
		}, []byte(`{}`), "application/json")
		require.NoError(t, err)
		path := out.(map[string]any)["path"].(string)
		assert.Equal(t, "output.json", filepath.Base(path))
	})
}

func TestWebhookSink(t *testing.T) {
	t.Run("posts payload with headers", func(t *testing.T) {
		var gotBody string
		var gotContentType, gotCustom string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			body, _ := io.ReadAll(r.Body)
			gotBody = string(body)
			gotContentType = r.Header.Get("Content-Type")
			gotCustom = r.Header.Get("X-Flow-Token")
			w.WriteHeader(http.StatusAccepted)
			w.Write([]byte("ack"))
		}))
		defer srv.Close()

		sink := NewWebhookSink(srv.Client())
		out, err := sink.Deliver(context.Background(), &flow.OutputConfig{
			WebhookURL:     srv.URL,
			WebhookHeaders: map[string]string{"X-Flow-Token": "secret"},
		}, []byte(`{"result":"done"}`), "application/json")
		require.NoError(t, err)

		assert.Equal(t, `{"result":"done"}`, gotBody)
		assert.Equal(t, "application/json", gotContentType)
		assert.Equal(t, "secret", gotCustom)

		info := out.(map[string]any)
		assert.Equal(t, http.StatusAccepted, info["status"])
		assert.Equal(t, "ack", info["body"])
	})

	t.Run("surfaces http errors", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "rejected", http.StatusBadGateway)
		}))
		defer srv.Close()

		sink := NewWebhookSink(srv.Client())
		_, err := sink.Deliver(context.Background(), &flow.OutputConfig{WebhookURL: srv.URL}, []byte("x"), "text/plain")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "502")
	})

	t.Run("requires url", func(t *testing.T) {
		sink := NewWebhookSink(nil)
		_, err := sink.Deliver(context.Background(), &flow.OutputConfig{}, []byte("x"), "text/plain")
		require.Error(t, err)
	})
}

func TestEmailSink(t *testing.T) {
	var sentTo []string
	var sentMsg string
	sink := NewEmailSink("localhost:25", "flows@example.com", nil)
	sink.send = func(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
		sentTo = to
		sentMsg = string(msg)
		return nil
	}

	out, err := sink.Deliver(context.Background(), &flow.OutputConfig{
		EmailTo:      "team@example.com",
		EmailSubject: "Weekly digest",
	}, []byte("digest body"), "text/plain")
	require.NoError(t, err)

	assert.Equal(t, []string{"team@example.com"}, sentTo)
	assert.Contains(t, sentMsg, "Subject: Weekly digest")
	assert.Contains(t, sentMsg, "digest body")
	assert.Equal(t, "team@example.com", out.(map[string]any)["to"])

	_, err = sink.Deliver(context.Background(), &flow.OutputConfig{}, []byte("x"), "text/plain")
	require.Error(t, err)
}

func TestDatabaseSink(t *testing.T) {
	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "outputs.db"))
	require.NoError(t, err)
	defer db.Close()

	sink := NewDatabaseSink(db)
	out, err := sink.Deliver(context.Background(), &flow.OutputConfig{
		TableName: "digests",
		Format:    flow.FormatJSON,
	}, []byte(`{"ok":true}`), "application/json")
	require.NoError(t, err)

	info := out.(map[string]any)
	assert.Equal(t, "flow_outputs", info["table"])

	var count int
	var tableKey, format string
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM flow_outputs").Scan(&count))
	assert.Equal(t, 1, count)
	require.NoError(t, db.QueryRow("SELECT table_key, format FROM flow_outputs").Scan(&tableKey, &format))
	assert.Equal(t, "digests", tableKey)
	assert.Equal(t, "json", format)
}

func TestDefaultSinks(t *testing.T) {
	sinks := DefaultSinks(NewFileSink(t.TempDir()), NewWebhookSink(nil), nil, nil)
	assert.Contains(t, sinks, flow.OutputTypeResponse)
	assert.Contains(t, sinks, flow.OutputTypeFile)
	assert.Contains(t, sinks, flow.OutputTypeWebhook)
	assert.NotContains(t, sinks, flow.OutputTypeEmail)
	assert.NotContains(t, sinks, flow.OutputTypeDatabase)
}
