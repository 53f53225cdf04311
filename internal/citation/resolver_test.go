package citation

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/ppiankov/hanrei/internal/logging"
	"github.com/ppiankov/hanrei/internal/model"
	"github.com/ppiankov/hanrei/internal/statute"
)

type countingFetcher struct {
	mu     sync.Mutex
	calls  []string
	texts  map[string]string
	fail   map[string]error
	delays map[string]time.Duration
}

func (f *countingFetcher) FetchStatuteText(ctx context.Context, id string) (string, error) {
	f.mu.Lock()
	f.calls = append(f.calls, id)
	delay := f.delays[id]
	f.mu.Unlock()

	if delay > 0 {
		time.Sleep(delay)
	}
	if err := f.fail[id]; err != nil {
		return "", err
	}
	if text, ok := f.texts[id]; ok {
		return text, nil
	}
	return "text of " + id, nil
}

func (f *countingFetcher) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func testResolver(dir Directory, f TextFetcher) *Resolver {
	return NewResolver(dir, f, ResolverConfig{Logger: logging.Discard()})
}

func TestLabel(t *testing.T) {
	tests := []struct {
		c    model.Citation
		want string
	}{
		{model.Citation{StatuteName: "著作権法", Article: "30"}, "著作権法 30条"},
		{model.Citation{StatuteName: "商法", Article: "10", Paragraph: "2"}, "商法 10条2項"},
		{model.Citation{StatuteName: "民法", Article: "709", Paragraph: "1", Item: "3"}, "民法 709条1項3号"},
		{model.Citation{StatuteName: "民法", Paragraph: "2"}, "民法 2項"},
		{model.Citation{StatuteName: "刑法", Article: "235", Item: "1"}, "刑法 235条1号"},
		{model.Citation{StatuteName: "憲法"}, "憲法"},
	}

	for _, tt := range tests {
		if got := Label(tt.c); got != tt.want {
			t.Errorf("Label(%+v) = %q, expected %q", tt.c, got, tt.want)
		}
	}
}

func TestResolveOne_ExactMatch(t *testing.T) {
	dir := statute.NewDirectory([]model.StatuteEntry{
		{DisplayName: "著作権法", CanonicalID: "321AC0000000048"},
		{DisplayName: "著作権等管理事業法", CanonicalID: "412AC0000000131"},
	})
	fetcher := &countingFetcher{texts: map[string]string{"321AC0000000048": "条文"}}

	res := testResolver(dir, fetcher).ResolveOne(context.Background(), model.Citation{StatuteName: "著作権法", Article: "30"})

	if res.Match != model.MatchExact {
		t.Errorf("Expected exact match, got %s", res.Match)
	}
	if len(res.Texts) != 1 {
		t.Fatalf("Expected 1 text block, got %d", len(res.Texts))
	}
	if res.Texts[0].Label != "著作権法 30条" || res.Texts[0].Text != "条文" {
		t.Errorf("Unexpected block: %+v", res.Texts[0])
	}
	if fetcher.count() != 1 {
		t.Errorf("Expected exactly 1 fetch, got %d", fetcher.count())
	}
}

func TestResolveOne_KeywordFallback(t *testing.T) {
	dir := statute.NewDirectory([]model.StatuteEntry{
		{DisplayName: "民法", CanonicalID: "129AC0000000089"},
		{DisplayName: "著作権法施行令", CanonicalID: "345CO0000000335"},
		{DisplayName: "著作権法施行規則", CanonicalID: "345M50000080026"},
	})
	fetcher := &countingFetcher{}

	res := testResolver(dir, fetcher).ResolveOne(context.Background(), model.Citation{StatuteName: "著作権法", Article: "30"})

	if res.Match != model.MatchKeyword {
		t.Errorf("Expected keyword match, got %s", res.Match)
	}
	if res.Label != "著作権法 30条" {
		t.Errorf("Expected citation label to be kept on the resolution, got %q", res.Label)
	}
	if len(res.Texts) != 2 {
		t.Fatalf("Expected 2 text blocks, got %d", len(res.Texts))
	}
	if res.Texts[0].Label != "著作権法施行令" || res.Texts[1].Label != "著作権法施行規則" {
		t.Errorf("Expected blocks labeled by display name in directory order, got %+v", res.Texts)
	}
	if res.Texts[1].Text != "text of 345M50000080026" {
		t.Errorf("Expected text associated with its own candidate, got %q", res.Texts[1].Text)
	}
}

func TestResolveOne_KeywordCap(t *testing.T) {
	var entries []model.StatuteEntry
	for i := 0; i < 12; i++ {
		entries = append(entries, model.StatuteEntry{
			DisplayName: fmt.Sprintf("特別措置法%02d", i),
			CanonicalID: fmt.Sprintf("ID%02d", i),
		})
	}
	fetcher := &countingFetcher{}

	res := testResolver(statute.NewDirectory(entries), fetcher).ResolveOne(context.Background(), model.Citation{StatuteName: "措置法"})

	if fetcher.count() > MaxCandidates {
		t.Errorf("Expected at most %d fetches, got %d", MaxCandidates, fetcher.count())
	}
	if len(res.Texts) != MaxCandidates {
		t.Fatalf("Expected %d blocks, got %d", MaxCandidates, len(res.Texts))
	}
	for i, block := range res.Texts {
		if block.CanonicalID != fmt.Sprintf("ID%02d", i) {
			t.Errorf("Block %d: expected first candidates in order, got %s", i, block.CanonicalID)
		}
	}
}

func TestResolveOne_ConfiguredCapNeverExceedsMax(t *testing.T) {
	r := NewResolver(nil, nil, ResolverConfig{MaxCandidates: 50})
	if r.maxCandidates != MaxCandidates {
		t.Errorf("Expected cap %d, got %d", MaxCandidates, r.maxCandidates)
	}
	r = NewResolver(nil, nil, ResolverConfig{MaxCandidates: 2})
	if r.maxCandidates != 2 {
		t.Errorf("Expected cap 2, got %d", r.maxCandidates)
	}
}

func TestResolveOne_CandidateFailureIsolated(t *testing.T) {
	dir := statute.NewDirectory([]model.StatuteEntry{
		{DisplayName: "労働基準法", CanonicalID: "A"},
		{DisplayName: "労働契約法", CanonicalID: "B"},
		{DisplayName: "労働組合法", CanonicalID: "C"},
	})
	fetcher := &countingFetcher{
		fail:   map[string]error{"B": errors.New("connection reset")},
		delays: map[string]time.Duration{"A": 20 * time.Millisecond},
	}

	res := testResolver(dir, fetcher).ResolveOne(context.Background(), model.Citation{StatuteName: "労働"})

	if len(res.Texts) != 3 {
		t.Fatalf("Expected 3 blocks, got %d", len(res.Texts))
	}
	if res.Texts[0].Unavailable || res.Texts[0].Text != "text of A" {
		t.Errorf("Expected slow candidate to succeed, got %+v", res.Texts[0])
	}
	if !res.Texts[1].Unavailable || res.Texts[1].Error == "" {
		t.Errorf("Expected failed candidate to be unavailable, got %+v", res.Texts[1])
	}
	if res.Texts[2].Unavailable {
		t.Errorf("Expected later candidate to be unaffected, got %+v", res.Texts[2])
	}
}

func TestResolveOne_ExactMatchFetchFailure(t *testing.T) {
	dir := statute.NewDirectory([]model.StatuteEntry{{DisplayName: "著作権法", CanonicalID: "X"}})
	fetcher := &countingFetcher{fail: map[string]error{"X": statute.ErrNotFound}}

	res := testResolver(dir, fetcher).ResolveOne(context.Background(), model.Citation{StatuteName: "著作権法"})

	if res.Match != model.MatchExact || len(res.Texts) != 1 || !res.Texts[0].Unavailable {
		t.Errorf("Expected one unavailable block, got %+v", res)
	}
}

func TestResolveOne_NoMatch(t *testing.T) {
	dir := statute.NewDirectory([]model.StatuteEntry{{DisplayName: "民法", CanonicalID: "A"}})
	fetcher := &countingFetcher{}

	res := testResolver(dir, fetcher).ResolveOne(context.Background(), model.Citation{StatuteName: "独占禁止法"})

	if res.Match != model.MatchNone || len(res.Texts) != 0 {
		t.Errorf("Expected silent no-match, got %+v", res)
	}
	if fetcher.count() != 0 {
		t.Errorf("Expected no fetches, got %d", fetcher.count())
	}
}

func TestResolve_NilDirectory(t *testing.T) {
	fetcher := &countingFetcher{}
	citations := []model.Citation{{StatuteName: "著作権法", Article: "30"}}

	for _, dir := range []Directory{nil, (*statute.Directory)(nil)} {
		got := testResolver(dir, fetcher).Resolve(context.Background(), citations)
		if len(got) != 1 || got[0].Match != model.MatchNone {
			t.Errorf("Expected degraded resolution, got %+v", got)
		}
	}
	if fetcher.count() != 0 {
		t.Errorf("Expected no fetches, got %d", fetcher.count())
	}
}

func TestResolve_PreservesOrderAndSkipsInvalid(t *testing.T) {
	dir := statute.NewDirectory([]model.StatuteEntry{
		{DisplayName: "著作権法", CanonicalID: "A"},
		{DisplayName: "商法", CanonicalID: "B"},
	})
	citations := []model.Citation{
		{StatuteName: "商法", Article: "10"},
		{StatuteName: ""},
		{StatuteName: "著作権法", Article: "30"},
	}

	got := testResolver(dir, &countingFetcher{}).Resolve(context.Background(), citations)

	if len(got) != 2 {
		t.Fatalf("Expected 2 resolutions, got %d", len(got))
	}
	if got[0].Label != "商法 10条" || got[1].Label != "著作権法 30条" {
		t.Errorf("Unexpected order: %q, %q", got[0].Label, got[1].Label)
	}
}

func TestResolveOne_NilFetcher(t *testing.T) {
	dir := statute.NewDirectory([]model.StatuteEntry{{DisplayName: "著作権法", CanonicalID: "A"}})

	res := testResolver(dir, nil).ResolveOne(context.Background(), model.Citation{StatuteName: "著作権法"})

	if len(res.Texts) != 1 || !res.Texts[0].Unavailable {
		t.Errorf("Expected unavailable block without fetcher, got %+v", res)
	}
}
