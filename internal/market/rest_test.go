package market

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestRestSourceFetchesAscendingTicks(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer sekrit" {
			t.Errorf("missing auth header, got %q", got)
		}
		if sym := r.URL.Query().Get("symbol"); sym != "TSLA" {
			t.Errorf("unexpected symbol %q", sym)
		}
		// Deliberately out of order; the source must sort ascending.
		fmt.Fprint(w, `{"symbol":"TSLA","candles":[
			{"close":101,"volume":2000,"datetime":1700000060000},
			{"close":100,"volume":1000,"datetime":1700000000000},
			{"close":102,"volume":3000,"datetime":1700000120000}
		]}`)
	}))
	defer srv.Close()

	src := NewRestSource(srv.URL, "sekrit", time.Second, zerolog.Nop())
	ticks, err := src.FetchRecent(context.Background(), "TSLA", 15)
	if err != nil {
		t.Fatalf("FetchRecent returned error: %v", err)
	}
	if len(ticks) != 3 {
		t.Fatalf("expected 3 ticks, got %d", len(ticks))
	}
	if ticks[0].Ts != 1700000000 || ticks[2].Ts != 1700000120 {
		t.Fatalf("ticks not sorted ascending: %+v", ticks)
	}
	if ticks[0].Price != 100 || ticks[2].Price != 102 {
		t.Fatalf("unexpected prices: %+v", ticks)
	}
}

func TestRestSourceTruncatesToLookback(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"candles":[
			{"close":1,"volume":1,"datetime":1000},
			{"close":2,"volume":2,"datetime":2000},
			{"close":3,"volume":3,"datetime":3000},
			{"close":4,"volume":4,"datetime":4000}
		]}`)
	}))
	defer srv.Close()

	src := NewRestSource(srv.URL, "", time.Second, zerolog.Nop())
	ticks, err := src.FetchRecent(context.Background(), "TSLA", 2)
	if err != nil {
		t.Fatalf("FetchRecent returned error: %v", err)
	}
	if len(ticks) != 2 || ticks[0].Price != 3 || ticks[1].Price != 4 {
		t.Fatalf("expected last 2 ticks, got %+v", ticks)
	}
}

func TestRestSourceErrorCarriesStatusCode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	src := NewRestSource(srv.URL, "", time.Second, zerolog.Nop())
	_, err := src.FetchRecent(context.Background(), "TSLA", 15)
	if !errors.Is(err, ErrFetch) {
		t.Fatalf("expected ErrFetch, got %v", err)
	}
	if !strings.Contains(err.Error(), "status 500") {
		t.Fatalf("error should name the numeric status code, got %q", err.Error())
	}
}

func TestRestSourceErrorsAreFetchErrors(t *testing.T) {
	cases := map[string]http.HandlerFunc{
		"server error": func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		},
		"empty payload": func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{"candles":[],"empty":true}`)
		},
		"bad json": func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `not json`)
		},
	}
	for name, handler := range cases {
		srv := httptest.NewServer(handler)
		src := NewRestSource(srv.URL, "", time.Second, zerolog.Nop())
		_, err := src.FetchRecent(context.Background(), "TSLA", 15)
		srv.Close()
		if !errors.Is(err, ErrFetch) {
			t.Fatalf("%s: expected ErrFetch, got %v", name, err)
		}
	}
}
