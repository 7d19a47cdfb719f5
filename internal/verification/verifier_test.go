package verification

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMockVerifier(t *testing.T) {
	v := NewMockVerifier()
	ctx := context.Background()

	res, err := v.Verify(ctx, Request{DocumentType: "passport", DocumentNumber: "AB123456"})
	require.NoError(t, err)
	assert.True(t, res.Success)
	require.NotNil(t, res.Fields)
	assert.Equal(t, "John Doe", res.Fields.FullName)
	assert.Equal(t, "Richard Doe", res.Fields.FathersName)
	assert.Equal(t, 95.5, res.Fields.Confidence)
	assert.Equal(t, "1990-01-01", res.Fields.DateOfBirth.Format("2006-01-02"))

	res, err = v.Verify(ctx, Request{DocumentType: "passport", DocumentNumber: "AB12"})
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Equal(t, "Invalid document number format", res.Error)
	assert.Nil(t, res.Fields)
}

func TestHTTPVerifier_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "secret", r.Header.Get("X-API-Key"))
		var req Request
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "N1234567", req.DocumentNumber)
		_, _ = w.Write([]byte(`{"success":true,"full_name":"Jane Roe","date_of_birth":"1985-06-15","id_city":"Lisbon","confidence_score":88}`))
	}))
	defer server.Close()

	v := NewHTTPVerifier(server.URL, "secret", time.Second, nil)
	res, err := v.Verify(context.Background(), Request{DocumentType: "national_id", DocumentNumber: "N1234567"})
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, "Jane Roe", res.Fields.FullName)
	assert.Equal(t, "Lisbon", res.Fields.City)
	assert.Equal(t, 88.0, res.Fields.Confidence)
	require.NotNil(t, res.Fields.DateOfBirth)
	assert.Equal(t, 1985, res.Fields.DateOfBirth.Year())
	assert.Equal(t, "Jane Roe", res.Raw["full_name"])
}

func TestHTTPVerifier_Rejected(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"success":false,"error":"document expired"}`))
	}))
	defer server.Close()

	res, err := NewHTTPVerifier(server.URL, "", time.Second, nil).Verify(context.Background(), Request{})
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Equal(t, "document expired", res.Error)
}

func TestHTTPVerifier_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	_, err := NewHTTPVerifier(server.URL, "", time.Second, nil).Verify(context.Background(), Request{})
	assert.Error(t, err)
}

type flakyVerifier struct {
	calls int
	err   error
}

func (f *flakyVerifier) Verify(ctx context.Context, req Request) (*Result, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return &Result{Success: false, Error: "document expired"}, nil
}

func TestBreakerVerifier_OpensAfterConsecutiveFailures(t *testing.T) {
	inner := &flakyVerifier{err: errors.New("dial tcp: connection refused")}
	v := NewBreakerVerifier(inner, BreakerSettings{ConsecutiveFailures: 3, OpenTimeout: time.Minute}, nil)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := v.Verify(ctx, Request{DocumentNumber: "AB123456"})
		require.Error(t, err)
		assert.NotErrorIs(t, err, ErrProviderUnavailable)
	}
	assert.Equal(t, gobreaker.StateOpen, v.State())

	_, err := v.Verify(ctx, Request{DocumentNumber: "AB123456"})
	assert.ErrorIs(t, err, ErrProviderUnavailable)
	assert.Equal(t, 3, inner.calls)
}

func TestBreakerVerifier_RejectionsDoNotTrip(t *testing.T) {
	inner := &flakyVerifier{}
	v := NewBreakerVerifier(inner, BreakerSettings{ConsecutiveFailures: 2}, nil)

	for i := 0; i < 5; i++ {
		res, err := v.Verify(context.Background(), Request{DocumentNumber: "AB123456"})
		require.NoError(t, err)
		assert.False(t, res.Success)
	}
	assert.Equal(t, gobreaker.StateClosed, v.State())
	assert.Equal(t, 5, inner.calls)
}
