package protect_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"testing"

	"inditools/indico"
	"inditools/model"
	"inditools/protect"
	"inditools/utils"
)

const sessionsBody = `{
  "results": [{
    "sessions": [{
      "id": 9,
      "title": "Morning Plenary",
      "room": "Main Auditorium",
      "startDate": {"date": "2026-08-25", "time": "09:00:00", "tz": "UTC"},
      "endDate": {"date": "2026-08-25", "time": "12:00:00", "tz": "UTC"},
      "contributions": [{
        "id": "29",
        "db_id": 29,
        "title": "First Talk",
        "url": "https://indico.example/event/7/contributions/29/",
        "startDate": {"date": "2026-08-25", "time": "09:00:00", "tz": "UTC"},
        "endDate": {"date": "2026-08-25", "time": "10:00:00", "tz": "UTC"},
        "folders": [{
          "id": 3,
          "attachments": [
            {
              "id": 11,
              "filename": "slides.pdf",
              "download_url": "%[1]s/event/7/contributions/29/folders/3/attachments/11/slides.pdf",
              "description": "Day one slides",
              "is_protected": false
            },
            {
              "id": 12,
              "filename": "locked.pdf",
              "download_url": "%[1]s/event/7/contributions/29/folders/3/attachments/12/locked.pdf",
              "description": "",
              "is_protected": true
            }
          ]
        }]
      }]
    }]
  }]
}`

func writeConfig(t *testing.T, instanceURL string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	config := fmt.Sprintf(`
indico:
  instance_url: %s
  event_id: 7
  api_token: sekrit
  event_timezone: UTC
state_db: ":memory:"
`, instanceURL)
	if err := os.WriteFile(path, []byte(config), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestProtectorRun(t *testing.T) {
	var manageCalls []string
	var manageForms []url.Values

	mux := http.NewServeMux()
	var serverURL string
	mux.HandleFunc("GET /event/7/api/registration-forms", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"id": 1, "identifier": "Registration", "title": "Registration Form"}]`))
	})
	mux.HandleFunc("GET /export/event/7.json", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, sessionsBody, serverURL)
	})
	mux.HandleFunc("POST /event/7/manage/", func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Fatalf("unexpected ParseForm() error: %s", err)
		}
		manageCalls = append(manageCalls, r.URL.Path)
		manageForms = append(manageForms, r.PostForm)
	})
	server := httptest.NewServer(mux)
	defer server.Close()
	serverURL = server.URL

	as := utils.NewAppState(writeConfig(t, server.URL))
	defer as.GracefulShutdown()
	if err := model.CreateSchema(as.BunDB); err != nil {
		t.Fatal(err)
	}

	client := indico.NewClient(server.URL, 7, "sekrit", "UTC", server.Client())
	protector := protect.NewProtector(as, client)
	if err := protector.Run(context.Background()); err != nil {
		t.Fatalf("unexpected Run() error: %s", err)
	}

	// only the public attachment gets an update
	if len(manageCalls) != 1 {
		t.Fatalf("got %d manage calls (%v), want 1", len(manageCalls), manageCalls)
	}
	if want := "/event/7/manage/contributions/29/folders/3/attachments/11"; manageCalls[0] != want {
		t.Errorf("manage path = %q, want %q", manageCalls[0], want)
	}

	form := manageForms[0]
	if got := form.Get("protected"); got != "y" {
		t.Errorf("protected = %q, want y", got)
	}
	if got := form.Get("acl"); got != `["Registration"]` {
		t.Errorf("acl = %q, want %q", got, `["Registration"]`)
	}
	if got, want := form.Get("description"), "Day one slides.\n\n"+utils.DefaultProtectMessage; got != want {
		t.Errorf("description = %q, want %q", got, want)
	}
	if got := form.Get("folder"); got != "__None" {
		t.Errorf("folder = %q, want __None", got)
	}

	count, err := as.BunDB.NewSelect().
		Model((*model.Protection)(nil)).
		Where("attachment_id = ?", 11).
		Count(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if count != 1 {
		t.Errorf("got %d audit rows, want 1", count)
	}
}

func TestProtectorRunRegistrationFormCount(t *testing.T) {
	tests := []struct {
		n    string
		body string
	}{
		{n: "no_forms", body: `[]`},
		{n: "multiple_forms", body: `[{"id": 1, "identifier": "A"}, {"id": 2, "identifier": "B"}]`},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.n, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			as := utils.NewAppState(writeConfig(t, server.URL))
			defer as.GracefulShutdown()
			if err := model.CreateSchema(as.BunDB); err != nil {
				t.Fatal(err)
			}

			client := indico.NewClient(server.URL, 7, "sekrit", "UTC", server.Client())
			if err := protect.NewProtector(as, client).Run(context.Background()); err == nil {
				t.Fatal("expected an error")
			}
		})
	}
}

func TestDescription(t *testing.T) {
	notice := utils.DefaultProtectMessage
	if got := protect.Description("", notice); got != notice {
		t.Errorf("got %q, want the bare notice", got)
	}
	if got, want := protect.Description("Existing", notice), "Existing.\n\n"+notice; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}
