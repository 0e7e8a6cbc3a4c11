package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gorilla/websocket"
	"github.com/voyagehq/journeyd/internal/chat"
	"github.com/voyagehq/journeyd/internal/domain"
	"github.com/voyagehq/journeyd/internal/journeystore"
	"github.com/voyagehq/journeyd/internal/marketplace"
	"github.com/voyagehq/journeyd/internal/mutator"
	"github.com/voyagehq/journeyd/internal/projector"
)

func testServer(t *testing.T) (*Server, *httptest.Server) {
	t.Helper()

	store, err := journeystore.New(":memory:")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { store.Close() })

	catalog := marketplace.NewCatalog()
	seedDir := t.TempDir()
	seed := `agents:
  - id: agent-research
    name: Research Scout
    keywords: [research, survey]
    installed: true
`
	if err := os.WriteFile(filepath.Join(seedDir, "agents.yaml"), []byte(seed), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := catalog.LoadDir(seedDir); err != nil {
		t.Fatal(err)
	}

	runner := mutator.NewRunner(store, marketplace.KeywordMatcher{Catalog: catalog}, 0)
	chatSvc := chat.NewService(runner, chat.CannedAssistant{})

	srv := NewServer(store, runner, chatSvc, catalog, "127.0.0.1:0")
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return srv, ts
}

func postJSON(t *testing.T, url string, body interface{}) *http.Response {
	t.Helper()
	data, err := json.Marshal(body)
	if err != nil {
		t.Fatal(err)
	}
	resp, err := http.Post(url, "application/json", bytes.NewReader(data))
	if err != nil {
		t.Fatal(err)
	}
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var v T
	if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
		t.Fatal(err)
	}
	return v
}

func TestCreateAndGetJourney(t *testing.T) {
	_, ts := testServer(t)

	resp := postJSON(t, ts.URL+"/api/journeys", CreateJourneyRequest{Title: "Launch"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("create status = %d", resp.StatusCode)
	}
	created := decode[domain.Journey](t, resp)
	if created.ID == "" {
		t.Fatal("journey id missing")
	}

	getResp, err := http.Get(ts.URL + "/api/journeys/" + created.ID)
	if err != nil {
		t.Fatal(err)
	}
	got := decode[domain.Journey](t, getResp)
	if got.Title != "Launch" {
		t.Errorf("Title = %q", got.Title)
	}
	if len(got.Log) != 1 || got.Log[0].Type != domain.EntryJourneyStart {
		t.Errorf("log = %+v", got.Log)
	}
}

func TestCreateJourneyWithInitialTasks(t *testing.T) {
	_, ts := testServer(t)

	resp := postJSON(t, ts.URL+"/api/journeys", CreateJourneyRequest{
		Title: "Planned",
		Tasks: []string{"Survey the market", "Draft the brief"},
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("create status = %d", resp.StatusCode)
	}
	created := decode[domain.Journey](t, resp)

	sum := created.Summarize()
	if sum.Tasks != 2 {
		t.Errorf("Tasks = %d, want 2", sum.Tasks)
	}
	if sum.Phases != 1 {
		t.Errorf("Phases = %d, want 1", sum.Phases)
	}
}

func TestCreateJourneyValidation(t *testing.T) {
	_, ts := testServer(t)

	resp := postJSON(t, ts.URL+"/api/journeys", CreateJourneyRequest{Title: "  "})
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestJourneyNotFound(t *testing.T) {
	_, ts := testServer(t)

	resp, err := http.Get(ts.URL + "/api/journeys/ghost")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}
}

func TestChatAddTaskAndToggle(t *testing.T) {
	_, ts := testServer(t)

	created := decode[domain.Journey](t, postJSON(t, ts.URL+"/api/journeys", CreateJourneyRequest{Title: "Chores"}))

	chatResp := postJSON(t, ts.URL+"/api/journeys/"+created.ID+"/chat", ChatRequest{Text: "add task: Buy milk"})
	if chatResp.StatusCode != http.StatusOK {
		t.Fatalf("chat status = %d", chatResp.StatusCode)
	}
	j := decode[domain.Journey](t, chatResp)

	var taskID string
	for _, e := range j.Log {
		if e.Type == domain.EntryTaskDefinition && !e.Outdated && e.Task != nil {
			taskID = e.Task.ID
		}
	}
	if taskID == "" {
		t.Fatal("no task created")
	}

	toggleResp := postJSON(t, fmt.Sprintf("%s/api/journeys/%s/tasks/%s/toggle", ts.URL, created.ID, taskID), ToggleRequest{Completed: true})
	if toggleResp.StatusCode != http.StatusOK {
		t.Fatalf("toggle status = %d", toggleResp.StatusCode)
	}
	j = decode[domain.Journey](t, toggleResp)

	cur := j.CurrentTask(taskID)
	if cur == nil || !cur.Completed {
		t.Errorf("current task = %+v, want completed", cur)
	}
}

func TestToggleUnknownTask(t *testing.T) {
	_, ts := testServer(t)
	created := decode[domain.Journey](t, postJSON(t, ts.URL+"/api/journeys", CreateJourneyRequest{Title: "Empty"}))

	resp := postJSON(t, fmt.Sprintf("%s/api/journeys/%s/tasks/ghost/toggle", ts.URL, created.ID), ToggleRequest{Completed: true})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}
}

func TestJourneyView(t *testing.T) {
	_, ts := testServer(t)
	created := decode[domain.Journey](t, postJSON(t, ts.URL+"/api/journeys", CreateJourneyRequest{Title: "Viewable"}))

	postJSON(t, ts.URL+"/api/journeys/"+created.ID+"/chat", ChatRequest{Text: "add task: Research vendors"}).Body.Close()

	resp, err := http.Get(ts.URL + "/api/journeys/" + created.ID + "/view")
	if err != nil {
		t.Fatal(err)
	}
	items := decode[[]projector.DisplayItem](t, resp)

	var group *projector.DisplayItem
	for i := range items {
		if items[i].Kind == projector.KindPhaseGroup {
			group = &items[i]
		}
	}
	if group == nil {
		t.Fatal("no phase group in view")
	}
	if len(group.Tasks) != 1 || group.Tasks[0].Name != "Research vendors" {
		t.Errorf("group tasks = %+v", group.Tasks)
	}
	// The matcher should have assigned the installed research agent.
	if group.Tasks[0].AssignedAgentID != "agent-research" {
		t.Errorf("AssignedAgentID = %q", group.Tasks[0].AssignedAgentID)
	}
}

func TestAgentsInstallFlow(t *testing.T) {
	_, ts := testServer(t)

	resp, err := http.Get(ts.URL + "/api/agents")
	if err != nil {
		t.Fatal(err)
	}
	agents := decode[[]marketplace.Agent](t, resp)
	if len(agents) != 1 {
		t.Fatalf("agents = %d, want 1", len(agents))
	}

	un := postJSON(t, ts.URL+"/api/agents/agent-research/uninstall", struct{}{})
	agent := decode[marketplace.Agent](t, un)
	if agent.Installed {
		t.Error("agent still installed")
	}

	missing := postJSON(t, ts.URL+"/api/agents/ghost/install", struct{}{})
	defer missing.Body.Close()
	if missing.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", missing.StatusCode)
	}
}

func TestStatusEndpoint(t *testing.T) {
	_, ts := testServer(t)
	created := decode[domain.Journey](t, postJSON(t, ts.URL+"/api/journeys", CreateJourneyRequest{Title: "Counted"}))
	postJSON(t, ts.URL+"/api/journeys/"+created.ID+"/chat", ChatRequest{Text: "add task: Count me"}).Body.Close()

	resp, err := http.Get(ts.URL + "/api/status")
	if err != nil {
		t.Fatal(err)
	}
	status := decode[StatusResponse](t, resp)
	if status.Journeys != 1 {
		t.Errorf("Journeys = %d, want 1", status.Journeys)
	}
	if status.Tasks != 1 {
		t.Errorf("Tasks = %d, want 1", status.Tasks)
	}
	if status.AgentsInstalled != 1 {
		t.Errorf("AgentsInstalled = %d, want 1", status.AgentsInstalled)
	}
}

func TestChatWebSocket(t *testing.T) {
	_, ts := testServer(t)
	created := decode[domain.Journey](t, postJSON(t, ts.URL+"/api/journeys", CreateJourneyRequest{Title: "Socketed"}))

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/journeys/" + created.ID + "/chat/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer conn.Close()

	if err := conn.WriteJSON(ChatFrame{Text: "add task: Socket chores"}); err != nil {
		t.Fatal(err)
	}

	var provisional ChatUpdate
	if err := conn.ReadJSON(&provisional); err != nil {
		t.Fatal(err)
	}
	if provisional.Type != "provisional" || provisional.Entry == nil {
		t.Fatalf("first frame = %+v, want provisional echo", provisional)
	}

	var confirmed ChatUpdate
	if err := conn.ReadJSON(&confirmed); err != nil {
		t.Fatal(err)
	}
	if confirmed.Type != "confirmed" {
		t.Fatalf("second frame = %+v, want confirmation", confirmed)
	}

	var hasTask bool
	for _, e := range confirmed.Log {
		if e.Type == domain.EntryTaskDefinition && e.Task != nil && e.Task.Name == "Socket chores" {
			hasTask = true
		}
	}
	if !hasTask {
		t.Error("confirmed log missing the created task")
	}

	// An empty message fails validation and must roll the echo back.
	if err := conn.WriteJSON(ChatFrame{Text: "   "}); err != nil {
		t.Fatal(err)
	}
	var echo, rollback ChatUpdate
	if err := conn.ReadJSON(&echo); err != nil {
		t.Fatal(err)
	}
	if err := conn.ReadJSON(&rollback); err != nil {
		t.Fatal(err)
	}
	if rollback.Type != "rollback" || rollback.Error == "" {
		t.Errorf("rollback frame = %+v", rollback)
	}
}
