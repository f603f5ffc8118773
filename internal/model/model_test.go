package model

import (
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrder_UserIDForms(t *testing.T) {
	var orders []Order
	body := `[
		{"_id":"o1","fileUrl":"https://cdn/x.pdf","status":"Pending","userId":"u1"},
		{"_id":"o2","fileUrl":"https://cdn/y.pdf","status":"Completed","userId":{"_id":"u2","name":"Alice","email":"a@b.com"}},
		{"_id":"o3","fileUrl":"https://cdn/z.pdf","status":"In Progress"}
	]`
	require.NoError(t, json.Unmarshal([]byte(body), &orders))
	require.Len(t, orders, 3)

	assert.Equal(t, "u1", orders[0].User.ID)
	assert.Equal(t, "Unknown", orders[0].User.DisplayName())
	assert.Equal(t, "Alice", orders[1].User.DisplayName())
	assert.Equal(t, "a@b.com", orders[1].User.DisplayEmail())
	assert.Nil(t, orders[2].User)
	assert.Equal(t, "N/A", orders[2].User.DisplayEmail())
	assert.Equal(t, StatusInProgress, orders[2].Status)
	assert.Equal(t, "Unnamed File", orders[2].DisplayName())
}

func TestParseOrderStatus(t *testing.T) {
	tests := map[string]OrderStatus{
		"Pending":     StatusPending,
		"completed":   StatusCompleted,
		"in-progress": StatusInProgress,
		"IN_PROGRESS": StatusInProgress,
		" In Progress": StatusInProgress,
	}
	for in, want := range tests {
		got, err := ParseOrderStatus(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseOrderStatus("Shipped")
	assert.Error(t, err)
	assert.False(t, OrderStatus("Shipped").Valid())
}

func TestItem_DecodeWithInterests(t *testing.T) {
	body := `{"_id":"i1","title":"Casio fx-991","price":850,"description":"barely used",
		"user":{"_id":"u9","name":"Bob"},
		"interests":[{"_id":"n1","user":{"name":"Cara","email":"c@d.com"},"contact":"555-0101","bidAmount":"800.5"}]}`
	var item Item
	require.NoError(t, json.Unmarshal([]byte(body), &item))

	assert.Equal(t, "i1", item.RecordID())
	assert.True(t, item.Price.Equal(decimal.NewFromInt(850)))
	require.Len(t, item.Interests, 1)
	assert.Equal(t, "₹800.50", Money(item.Interests[0].BidAmount))
	assert.Equal(t, "Cara", item.Interests[0].User.DisplayName())
}

func TestInterestRequest_Encode(t *testing.T) {
	req := InterestRequest{BidAmount: decimal.RequireFromString("120.00"), Contact: "me@x.io"}
	data, err := json.Marshal(req)
	require.NoError(t, err)
	assert.JSONEq(t, `{"bidAmount":"120","contact":"me@x.io"}`, string(data))
}

func TestAnalysis_MarkdownFallbacks(t *testing.T) {
	var nilAnalysis *Analysis
	assert.Equal(t, "", nilAnalysis.Markdown())

	md := (&Analysis{Summary: "A thesis draft."}).Markdown()
	assert.Contains(t, md, "A thesis draft.")
	assert.Contains(t, md, "No suggestions provided.")
	assert.Contains(t, md, "No tags provided.")
	assert.Contains(t, md, "No validation feedback provided.")

	md = (&Analysis{Tags: []string{"thesis", "physics"}}).Markdown()
	assert.Contains(t, md, "- thesis\n- physics\n")
}

func TestUploadResult_Decode(t *testing.T) {
	var res UploadResult
	require.NoError(t, json.Unmarshal([]byte(`{"aiData":{"summary":"ok","tags":["a"]}}`), &res))
	assert.Empty(t, res.URL)
	require.NotNil(t, res.Analysis)
	assert.Equal(t, []string{"a"}, res.Analysis.Tags)
}

func TestArtifact(t *testing.T) {
	var zero Artifact
	assert.True(t, zero.IsZero())
	_, err := zero.Open()
	assert.Error(t, err)

	a := ArtifactFromBytes("Report.PDF", []byte("%PDF-1.4"))
	assert.False(t, a.IsZero())
	assert.Equal(t, ".pdf", a.Ext())
	assert.Equal(t, "application/pdf", a.ContentType)
	assert.EqualValues(t, 8, a.Size)

	path := filepath.Join(t.TempDir(), "scan.png")
	require.NoError(t, os.WriteFile(path, []byte("png"), 0644))
	f, err := ArtifactFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "scan.png", f.Name)
	rc, err := f.Open()
	require.NoError(t, err)
	data, _ := io.ReadAll(rc)
	rc.Close()
	assert.Equal(t, "png", string(data))

	_, err = ArtifactFromFile(t.TempDir())
	assert.Error(t, err)
}
