package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
)

// A fake Smartlead and Reply.io for local development. Point the sync
// service at it instead of the real platforms:
//
//	SMARTLEAD_BASE_URL=http://localhost:8090/smartlead \
//	REPLYIO_BASE_URL=http://localhost:8090/replyio \
//	go run ./cmd/server
//
// Every response is hardcoded. The only dynamic behavior is auth presence
// checking, so missing key wiring fails here the same way it fails against
// the real APIs.
func main() {
	log.Println("╔════════════════════════════════════════════════════════════╗")
	log.Println("║  WARNING: This is a STUB provider API for local testing.  ║")
	log.Println("║  All responses are HARDCODED placeholders.                ║")
	log.Println("╚════════════════════════════════════════════════════════════╝")

	port := os.Getenv("STUB_PORT")
	if port == "" {
		port = "8090"
	}

	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"healthy","service":"outreach-stub-providers","warning":"THIS IS A STUB - responses are hardcoded"}`))
	})

	registerSmartlead(mux)
	registerReplyIO(mux)

	server := &http.Server{
		Addr:         ":" + port,
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("Stub provider API listening on :%s (smartlead at /smartlead, reply.io at /replyio)", port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Stub server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	server.Shutdown(shutdownCtx)
	log.Println("Stub stopped")
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write([]byte(body))
}

// requireSmartleadKey rejects requests without the api_key query parameter,
// mirroring how the real API fails when the connection row has no key.
func requireSmartleadKey(w http.ResponseWriter, r *http.Request) bool {
	if r.URL.Query().Get("api_key") == "" {
		writeJSON(w, http.StatusUnauthorized, `{"message":"Invalid API key"}`)
		return false
	}
	return true
}

func requireReplyIOKey(w http.ResponseWriter, r *http.Request) bool {
	if r.Header.Get("x-api-key") == "" {
		writeJSON(w, http.StatusUnauthorized, `{"message":"Access denied"}`)
		return false
	}
	return true
}

func registerSmartlead(mux *http.ServeMux) {
	// Counters are numeric strings because that is what Smartlead actually
	// sends.
	mux.HandleFunc("GET /smartlead/campaigns", func(w http.ResponseWriter, r *http.Request) {
		if !requireSmartleadKey(w, r) {
			return
		}
		writeJSON(w, http.StatusOK, `[
			{"id": 101, "name": "Q3 Outbound - SaaS Founders", "status": "ACTIVE", "created_at": "2025-05-12T09:30:00Z"},
			{"id": 102, "name": "Dormant Accounts Reactivation", "status": "PAUSED", "created_at": "2025-03-02T14:00:00Z"}
		]`)
	})

	mux.HandleFunc("GET /smartlead/campaigns/{id}/analytics", func(w http.ResponseWriter, r *http.Request) {
		if !requireSmartleadKey(w, r) {
			return
		}
		writeJSON(w, http.StatusOK, `{
			"id": `+r.PathValue("id")+`,
			"sent_count": "1482",
			"unique_open_count": "512",
			"unique_click_count": "88",
			"reply_count": "47",
			"bounce_count": "21",
			"campaign_lead_stats": {"total": 350, "interested": 12}
		}`)
	})

	mux.HandleFunc("GET /smartlead/campaigns/{id}/sequences", func(w http.ResponseWriter, r *http.Request) {
		if !requireSmartleadKey(w, r) {
			return
		}
		writeJSON(w, http.StatusOK, `[
			{"seq_number": 1, "subject": "Quick question about {{company_name}}", "email_body": "<p>Hi {{first_name}},</p><p>Noticed you lead growth at {{company_name}}...</p>", "seq_delay_details": {"delay_in_days": 0}},
			{"seq_number": 2, "subject": "", "email_body": "<p>Bumping this up in case it got buried.</p>", "seq_delay_details": {"delay_in_days": 3}},
			{"seq_number": 3, "sequence_variants": [{"subject": "Should I close your file?", "email_body": "<p>Last try, {{first_name}}.</p>"}], "seq_delay_details": {"delay_in_days": 5}}
		]`)
	})

	mux.HandleFunc("GET /smartlead/leads", func(w http.ResponseWriter, r *http.Request) {
		if !requireSmartleadKey(w, r) {
			return
		}
		if r.URL.Query().Get("email") != "jane@acme.com" {
			writeJSON(w, http.StatusNotFound, `{"message":"Lead not found"}`)
			return
		}
		writeJSON(w, http.StatusOK, `{
			"id": 55019,
			"first_name": "Jane",
			"last_name": "Porter",
			"email": "jane@acme.com",
			"campaign_leads": [
				{"campaign_id": 101, "campaign_name": "Q3 Outbound - SaaS Founders"}
			]
		}`)
	})

	mux.HandleFunc("GET /smartlead/campaigns/{id}/leads/{leadID}/message-history", func(w http.ResponseWriter, r *http.Request) {
		if !requireSmartleadKey(w, r) {
			return
		}
		writeJSON(w, http.StatusOK, `{
			"history": [
				{"type": "SENT", "time": "2025-06-03T08:15:00Z", "subject": "Quick question about Acme", "email_body": "<p>Hi Jane, noticed you lead growth at Acme...</p>"},
				{"type": "REPLY", "time": "2025-06-03T11:42:00Z", "subject": "Re: Quick question about Acme", "email_body": "<p>Interesting, send me more details.</p>"}
			]
		}`)
	})
}

func registerReplyIO(mux *http.ServeMux) {
	mux.HandleFunc("GET /replyio/sequences", func(w http.ResponseWriter, r *http.Request) {
		if !requireReplyIOKey(w, r) {
			return
		}
		// Short page, so the client stops after one fetch.
		writeJSON(w, http.StatusOK, `[
			{"id": 9001, "name": "Enterprise ABM Wave 2", "status": "Active", "created": "2025-04-20T10:00:00Z"},
			{"id": 9002, "name": "Webinar Follow-up", "status": "Paused", "created": "2025-02-11T16:30:00Z"}
		]`)
	})

	mux.HandleFunc("GET /replyio/v1/campaigns", func(w http.ResponseWriter, r *http.Request) {
		if !requireReplyIOKey(w, r) {
			return
		}
		if r.URL.Query().Get("id") == "" {
			writeJSON(w, http.StatusNotFound, `{"message":"Campaign not found"}`)
			return
		}
		writeJSON(w, http.StatusOK, `{
			"id": `+r.URL.Query().Get("id")+`,
			"deliveriesCount": 640,
			"opensCount": 211,
			"clicksCount": 37,
			"repliesCount": 18,
			"bouncesCount": 9,
			"interestedCount": 5
		}`)
	})

	mux.HandleFunc("GET /replyio/sequences/{id}/steps", func(w http.ResponseWriter, r *http.Request) {
		if !requireReplyIOKey(w, r) {
			return
		}
		writeJSON(w, http.StatusOK, `{
			"steps": [
				{"number": 1, "type": "email", "templates": [{"subject": "Intro for {{FirstName}}", "body": "<p>Hello {{FirstName}},</p>"}], "delayInDays": 0},
				{"number": 2, "type": "call", "name": "Discovery call"},
				{"number": 3, "type": "email", "templates": [{"subject": "", "body": "<p>Following up on my last note.</p>"}], "delayInDays": 4}
			]
		}`)
	})

	mux.HandleFunc("GET /replyio/v1/people", func(w http.ResponseWriter, r *http.Request) {
		if !requireReplyIOKey(w, r) {
			return
		}
		if r.URL.Query().Get("email") != "jane@acme.com" {
			writeJSON(w, http.StatusNotFound, `{"message":"Person not found"}`)
			return
		}
		writeJSON(w, http.StatusOK, `{
			"id": 77013,
			"firstName": "Jane",
			"lastName": "Porter",
			"email": "jane@acme.com",
			"campaigns": [{"id": 9001, "name": "Enterprise ABM Wave 2"}]
		}`)
	})
}
