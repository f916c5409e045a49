package api_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nebula-cli/internal/api"
	"nebula-cli/internal/logger"
)

type staticToken string

func (s staticToken) Token() string { return string(s) }

func testLogger() *logger.Logger {
	log := logger.NewLogger()
	log.SetQuiet(true)
	return log
}

func newClient(t *testing.T, handler http.Handler, token string) (*api.Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	client := api.NewClient(server.URL, 5*time.Second, staticToken(token), testLogger())
	return client, server
}

func TestBearerHeaderAttachedOutsideAuth(t *testing.T) {
	var gotEvents, gotLogin string
	mux := http.NewServeMux()
	mux.HandleFunc("/events", func(w http.ResponseWriter, r *http.Request) {
		gotEvents = r.Header.Get("Authorization")
		w.Write([]byte(`[]`))
	})
	mux.HandleFunc("/auth/login", func(w http.ResponseWriter, r *http.Request) {
		gotLogin = r.Header.Get("Authorization")
		w.Write([]byte(`{"token":"fresh","user":{"id":1,"email":"a@b.c","role":"USER"}}`))
	})

	client, _ := newClient(t, mux, "stored-token")
	_, err := client.Events(context.Background())
	require.NoError(t, err)
	_, err = client.Login(context.Background(), api.LoginRequest{Email: "a@b.c", Password: "x"})
	require.NoError(t, err)

	assert.Equal(t, "Bearer stored-token", gotEvents)
	// Auth endpoints never carry a stale credential.
	assert.Equal(t, "", gotLogin)
}

func TestUnauthorizedFiresHookOnce401Only(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/booking/mybookings", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})
	mux.HandleFunc("/admin/bookings", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"message":"Access denied"}`))
	})

	client, _ := newClient(t, mux, "token")
	hookCalls := 0
	client.SetUnauthorizedHook(func() { hookCalls++ })

	_, err := client.MyBookings(context.Background())
	assert.ErrorIs(t, err, api.ErrUnauthorized)
	assert.Equal(t, 1, hookCalls)

	// 403 is a role problem, not a credential problem: the session
	// must survive it.
	_, err = client.AllBookings(context.Background())
	var serverErr *api.ServerError
	require.ErrorAs(t, err, &serverErr)
	assert.Equal(t, http.StatusForbidden, serverErr.StatusCode)
	assert.Equal(t, "Access denied", serverErr.Message)
	assert.Equal(t, 1, hookCalls)
}

func TestErrorTaxonomy(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/events/99", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	mux.HandleFunc("/booking", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"message":"event is sold out"}`))
	})

	client, _ := newClient(t, mux, "token")

	_, err := client.EventByID(context.Background(), 99)
	assert.ErrorIs(t, err, api.ErrNotFound)

	_, err = client.CreateBooking(context.Background(), 1, 2)
	var serverErr *api.ServerError
	require.ErrorAs(t, err, &serverErr)
	assert.Equal(t, "event is sold out", serverErr.Message)
}

func TestUnreachableServerIsUnavailable(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	server.Close() // nothing is listening anymore

	client := api.NewClient(server.URL, time.Second, staticToken(""), testLogger())
	_, err := client.Events(context.Background())
	assert.True(t, errors.Is(err, api.ErrUnavailable))
}

func TestLoginRejectsTokenlessResponse(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/auth/login", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"user":{"id":1,"email":"a@b.c","role":"USER"}}`))
	})

	client, _ := newClient(t, mux, "")
	session, err := client.Login(context.Background(), api.LoginRequest{Email: "a@b.c", Password: "x"})
	assert.Nil(t, session)
	assert.ErrorIs(t, err, api.ErrUnauthorized)
}

func TestCreateEventSendsMultipartImageField(t *testing.T) {
	var gotName, gotImage, gotFilename string
	mux := http.NewServeMux()
	mux.HandleFunc("/admin/events", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		gotName = r.FormValue("name")
		file, header, err := r.FormFile("image")
		require.NoError(t, err)
		defer file.Close()
		data, _ := io.ReadAll(file)
		gotImage = string(data)
		gotFilename = header.Filename
		w.Write([]byte(`{"id":5,"name":"Aurora"}`))
	})

	client, _ := newClient(t, mux, "token")
	event, err := client.CreateEvent(context.Background(), api.EventForm{
		Name: "Aurora", Artist: "Band", Location: "Hall",
		Date: "2026-10-01", Time: "20:00", AmPm: "PM",
		ImageName: "poster.png", Image: strings.NewReader("png-bytes"),
	})
	require.NoError(t, err)
	assert.Equal(t, int64(5), event.ID)
	assert.Equal(t, "Aurora", gotName)
	assert.Equal(t, "png-bytes", gotImage)
	assert.Equal(t, "poster.png", gotFilename)
}

func TestGenerateQRMapsBackendRefusal(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/qr/generate/1", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"success","qrCodes":["a","b"]}`))
	})
	mux.HandleFunc("/qr/generate/2", func(w http.ResponseWriter, r *http.Request) {
		// Some deployments answer the repeat attempt with 200 plus an
		// error status in the body.
		w.Write([]byte(`{"status":"error","message":"QR codes already generated for this booking"}`))
	})

	client, _ := newClient(t, mux, "token")

	codes, err := client.GenerateQR(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, codes)

	_, err = client.GenerateQR(context.Background(), 2)
	var serverErr *api.ServerError
	require.ErrorAs(t, err, &serverErr)
	assert.Contains(t, serverErr.Message, "already generated")
}

func TestValidateTicketRejectsEmptyPayloadLocally(t *testing.T) {
	called := false
	mux := http.NewServeMux()
	mux.HandleFunc("/scan/validate", func(w http.ResponseWriter, r *http.Request) {
		called = true
	})

	client, _ := newClient(t, mux, "token")
	_, err := client.ValidateTicket(context.Background(), "   ")
	var validationErr *api.ValidationError
	assert.ErrorAs(t, err, &validationErr)
	assert.False(t, called)
}

func TestUserMessageBuckets(t *testing.T) {
	cases := []struct {
		err  error
		want string
	}{
		{nil, ""},
		{api.ErrUnavailable, "Unable to connect to server. Please check your connection."},
		{api.ErrUnauthorized, "Your session has expired. Please log in again."},
		{api.ErrNotFound, "The requested item was not found."},
		{&api.ServerError{StatusCode: 500, Message: "boom"}, "boom"},
		{&api.ServerError{StatusCode: 502}, "server error (status 502)"},
		{&api.ValidationError{Field: "qrCode", Message: "empty"}, "qrCode: empty"},
		{errors.New("weird"), "An unexpected error occurred"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, api.UserMessage(tc.err))
	}
}

func TestScanStatusDecodesPollShape(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/scan/public/status/3", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"anyTicketScanned":true,"scannedTickets":2,"totalTickets":5,"eventName":"Aurora"}`))
	})

	client, _ := newClient(t, mux, "")
	status, err := client.ScanStatus(context.Background(), 3)
	require.NoError(t, err)
	assert.True(t, status.AnyTicketScanned)
	assert.Equal(t, 2, status.ScannedTickets)
	assert.False(t, status.AllScanned())
}
