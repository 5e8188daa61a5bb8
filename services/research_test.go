package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"niche-research/models"
	"niche-research/progress"
	"niche-research/storage"
	"niche-research/utils"
)

type memorySink struct {
	mu        sync.Mutex
	runs      map[string]*models.ResearchRun
	listings  map[string][]*models.ScoredListing
	saveErr   error
	completed *models.ResearchRun
}

func newMemorySink() *memorySink {
	return &memorySink{
		runs:     make(map[string]*models.ResearchRun),
		listings: make(map[string][]*models.ScoredListing),
	}
}

func (m *memorySink) CreateRun(run *models.ResearchRun) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.runs[run.ID] = run
	return nil
}

func (m *memorySink) SaveListing(runID string, l *models.ScoredListing) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	m.listings[runID] = append(m.listings[runID], l)
	return nil
}

func (m *memorySink) CompleteRun(run *models.ResearchRun) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.completed = run
	return nil
}

func (m *memorySink) Close() error { return nil }

var _ storage.PersistenceSink = (*memorySink)(nil)

type stubScraper struct {
	listings []*models.RawListing
	panics   bool
}

func (s *stubScraper) ScrapeAll(ctx context.Context, niche string) []*models.RawListing {
	if s.panics {
		panic("scraper blew up")
	}
	return s.listings
}

type stubTrends struct {
	si       models.SearchInterest
	events   []string
	keywords []string
}

func (s *stubTrends) SearchInterest(ctx context.Context, niche string) models.SearchInterest {
	return s.si
}
func (s *stubTrends) DetectEvents(ctx context.Context, niche string) []string { return s.events }
func (s *stubTrends) PlatformKeywords(ctx context.Context, niche string) []string {
	return s.keywords
}

func testOrchestrator(sink *memorySink, scraper ListingScraper, trends TrendAggregator) (*Orchestrator, *progress.Hub) {
	hub := progress.NewHub()
	o := NewOrchestrator(
		scraper,
		trends,
		NewScoringEngine(DefaultScoringConfig()),
		sink,
		nil,
		hub,
		utils.NewLogger(),
	)
	return o, hub
}

func qualifyingListings() []*models.RawListing {
	urls := []string{
		"https://www.amazon.in/dp/B01",
		"https://www.amazon.in/dp/B02",
		"https://www.flipkart.com/p/1",
		"https://www.flipkart.com/p/2",
		"https://www.meesho.com/p/1",
		"https://www.meesho.com/p/2",
	}
	platforms := []models.Platform{
		models.PlatformAmazon, models.PlatformAmazon,
		models.PlatformFlipkart, models.PlatformFlipkart,
		models.PlatformMeesho, models.PlatformMeesho,
	}
	var out []*models.RawListing
	for i, u := range urls {
		out = append(out, goodListing(platforms[i], u))
	}
	// two that must be filtered out
	lowRated := goodListing(models.PlatformAmazon, "https://www.amazon.in/dp/B03")
	lowRated.Rating = models.Float64(2.5)
	oos := goodListing(models.PlatformFlipkart, "https://www.flipkart.com/p/3")
	oos.StockStatus = models.StockOutOfStock
	return append(out, lowRated, oos)
}

func TestExecuteCompletesAndPersists(t *testing.T) {
	sink := newMemorySink()
	o, _ := testOrchestrator(sink, &stubScraper{listings: qualifyingListings()}, &stubTrends{
		si:       models.SearchInterest{Niche: "yoga mats", InterestPct: 62, IsTrending: true, Available: true},
		events:   []string{"Diwali sale season"},
		keywords: []string{"yoga aesthetic"},
	})

	run, err := o.Execute(context.Background(), "yoga mats")
	if err != nil {
		t.Fatalf("Execute() error: %v", err)
	}

	if run.Status != models.RunCompleted {
		t.Fatalf("run status = %s; want completed (error: %s)", run.Status, run.ErrorLog)
	}
	if run.ProductsFound != 6 {
		t.Errorf("ProductsFound = %d; want 6", run.ProductsFound)
	}
	if run.CompletedAt == nil {
		t.Error("CompletedAt not set on completed run")
	}
	if !run.Trends.SearchInterest.IsTrending {
		t.Error("trend context not recorded on run")
	}

	saved := sink.listings[run.ID]
	if len(saved) != 6 {
		t.Fatalf("sink holds %d listings; want 6", len(saved))
	}
	for i := 1; i < len(saved); i++ {
		if saved[i].Score > saved[i-1].Score {
			t.Errorf("saved listings not sorted: [%d]=%v > [%d]=%v",
				i, saved[i].Score, i-1, saved[i-1].Score)
		}
	}
	if sink.completed == nil || sink.completed.Status != models.RunCompleted {
		t.Error("CompleteRun not called with completed status")
	}
}

func TestExecuteSurvivesDeadTrendSources(t *testing.T) {
	sink := newMemorySink()
	// neutral trend context, exactly what the aggregator yields when all
	// sources fail
	o, _ := testOrchestrator(sink, &stubScraper{listings: qualifyingListings()}, &stubTrends{
		si: models.SearchInterest{Niche: "yoga mats"},
	})

	run, err := o.Execute(context.Background(), "yoga mats")
	if err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if run.Status != models.RunCompleted {
		t.Errorf("run status = %s; want completed despite dead trend sources", run.Status)
	}
	if run.ProductsFound == 0 {
		t.Error("ProductsFound = 0; scraped products should still qualify without trends")
	}
}

func TestExecuteFailsWhenSinkRejectsListings(t *testing.T) {
	sink := newMemorySink()
	sink.saveErr = errors.New("disk full")
	o, _ := testOrchestrator(sink, &stubScraper{listings: qualifyingListings()}, &stubTrends{})

	run, err := o.Execute(context.Background(), "yoga mats")
	if err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if run.Status != models.RunFailed {
		t.Fatalf("run status = %s; want failed", run.Status)
	}
	if run.ErrorLog == "" {
		t.Error("failed run has empty error log")
	}
	if run.CompletedAt == nil {
		t.Error("CompletedAt not set on failed run")
	}
}

func TestExecuteRecoversFromPanic(t *testing.T) {
	sink := newMemorySink()
	o, _ := testOrchestrator(sink, &stubScraper{panics: true}, &stubTrends{})

	run, err := o.Execute(context.Background(), "yoga mats")
	if err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if run.Status != models.RunFailed {
		t.Fatalf("run status = %s; want failed after panic", run.Status)
	}
	if run.ErrorLog == "" {
		t.Error("panic left no error log")
	}
}

func TestExecutePublishesProgress(t *testing.T) {
	sink := newMemorySink()
	o, hub := testOrchestrator(sink, &stubScraper{listings: qualifyingListings()}, &stubTrends{})

	// Execute is synchronous, so pre-create the run to subscribe first.
	run := models.NewResearchRun("yoga mats")
	if err := sink.CreateRun(run); err != nil {
		t.Fatal(err)
	}
	ch, cancel := hub.Subscribe(run.ID)
	defer cancel()

	done := make(chan struct{})
	var events []progress.Event
	go func() {
		defer close(done)
		for ev := range ch {
			events = append(events, ev)
		}
	}()

	o.execute(context.Background(), run)
	<-done

	if len(events) == 0 {
		t.Fatal("no progress events published")
	}
	last := events[len(events)-1]
	if last.Pct != 100 || last.Step != "completed" {
		t.Errorf("terminal event = (%q, %d); want (completed, 100)", last.Step, last.Pct)
	}
	for i := 1; i < len(events); i++ {
		if events[i].Pct < events[i-1].Pct {
			t.Errorf("progress went backwards: %d after %d", events[i].Pct, events[i-1].Pct)
		}
	}
}

type capturingScraper struct {
	ctxErr chan error
}

func (s *capturingScraper) ScrapeAll(ctx context.Context, niche string) []*models.RawListing {
	s.ctxErr <- ctx.Err()
	return nil
}

func TestStartRunOutlivesCaller(t *testing.T) {
	sink := newMemorySink()
	sc := &capturingScraper{ctxErr: make(chan error, 1)}
	o, _ := testOrchestrator(sink, sc, &stubTrends{})

	ctx, cancel := context.WithCancel(context.Background())
	run, err := o.StartRun(ctx, "yoga mats")
	if err != nil {
		t.Fatalf("StartRun() error: %v", err)
	}

	// Caller goes away immediately, the way an HTTP handler does after
	// responding 202. The pipeline must not notice.
	cancel()

	select {
	case ctxErr := <-sc.ctxErr:
		if ctxErr != nil {
			t.Fatalf("pipeline context dead after caller cancelled: %v", ctxErr)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("scraper never ran")
	}

	deadline := time.After(2 * time.Second)
	for {
		sink.mu.Lock()
		completed := sink.completed
		sink.mu.Unlock()
		if completed != nil {
			if completed.Status != models.RunCompleted {
				t.Fatalf("run status = %s; want completed", completed.Status)
			}
			break
		}
		select {
		case <-deadline:
			t.Fatal("run never completed")
		case <-time.After(10 * time.Millisecond):
		}
	}

	// The returned run is the caller's snapshot; the pipeline mutates its
	// own copy.
	if run.Status != models.RunRunning {
		t.Errorf("returned run status = %s; want the running snapshot", run.Status)
	}
	if run.ID == "" || run.Niche != "yoga mats" {
		t.Errorf("snapshot fields = (%q, %q); want populated id and niche", run.ID, run.Niche)
	}
}

func TestTruncateError(t *testing.T) {
	long := make([]byte, maxErrorLogLen*2)
	for i := range long {
		long[i] = 'x'
	}
	if got := truncateError(string(long)); len(got) != maxErrorLogLen {
		t.Errorf("truncateError len = %d; want %d", len(got), maxErrorLogLen)
	}
	if got := truncateError("short"); got != "short" {
		t.Errorf("truncateError(%q) = %q", "short", got)
	}
}
