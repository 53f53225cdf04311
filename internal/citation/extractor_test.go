package citation

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/ppiankov/hanrei/internal/llm"
	"github.com/ppiankov/hanrei/internal/model"
)

type fakeCompleter struct {
	text    string
	err     error
	prompts []string
}

func (f *fakeCompleter) Complete(ctx context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
	f.prompts = append(f.prompts, req.Prompt)
	if f.err != nil {
		return nil, f.err
	}
	return &llm.CompletionResponse{Text: f.text}, nil
}

func TestParseCitationLines(t *testing.T) {
	got := ParseCitationLines("著作権法,30,,\n商法,10,2,")
	want := []model.Citation{
		{StatuteName: "著作権法", Article: "30"},
		{StatuteName: "商法", Article: "10", Paragraph: "2"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Expected %+v, got %+v", want, got)
	}
}

func TestParseCitationLines_DropsMalformedLines(t *testing.T) {
	raw := strings.Join([]string{
		"著作権法,30,,",
		"民法,709",
		"",
		"以下が引用です。",
		",1,2,3",
		"  商法 , 10 , 2 , 1 ",
	}, "\n")

	got := ParseCitationLines(raw)
	want := []model.Citation{
		{StatuteName: "著作権法", Article: "30"},
		{StatuteName: "商法", Article: "10", Paragraph: "2", Item: "1"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Expected %+v, got %+v", want, got)
	}
}

func TestParseCitationLines_ExtraFieldsIgnored(t *testing.T) {
	got := ParseCitationLines("民法,709,1,,備考")
	want := []model.Citation{{StatuteName: "民法", Article: "709", Paragraph: "1"}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Expected %+v, got %+v", want, got)
	}
}

func TestParseCitationLines_CRLF(t *testing.T) {
	got := ParseCitationLines("著作権法,30,,\r\n商法,10,2,\r\n")
	if len(got) != 2 || got[0].Item != "" || got[1].Paragraph != "2" {
		t.Errorf("Unexpected citations: %+v", got)
	}
}

func TestParseCitationLines_Empty(t *testing.T) {
	if got := ParseCitationLines(""); len(got) != 0 {
		t.Errorf("Expected no citations, got %+v", got)
	}
}

func TestExtractor_Extract(t *testing.T) {
	completer := &fakeCompleter{text: "著作権法,30,,\n"}
	e := NewExtractor(completer, "")

	got, err := e.Extract(context.Background(), "過去の判例によれば、著作権法30条により複製できる。")
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if len(got) != 1 || got[0].StatuteName != "著作権法" {
		t.Errorf("Unexpected citations: %+v", got)
	}

	if len(completer.prompts) != 1 {
		t.Fatalf("Expected one LLM call, got %d", len(completer.prompts))
	}
	if !strings.Contains(completer.prompts[0], "過去の判例によれば、著作権法30条により複製できる。") {
		t.Error("Expected answer text to be embedded in the prompt")
	}
}

func TestExtractor_EmptyAnswer(t *testing.T) {
	completer := &fakeCompleter{}
	got, err := NewExtractor(completer, "").Extract(context.Background(), "  ")
	if err != nil || got != nil {
		t.Errorf("Expected nil, nil; got %+v, %v", got, err)
	}
	if len(completer.prompts) != 0 {
		t.Error("Expected no LLM call for empty answer")
	}
}

func TestExtractor_LLMError(t *testing.T) {
	upstream := errors.New("connection refused")
	_, err := NewExtractor(&fakeCompleter{err: upstream}, "").Extract(context.Background(), "回答")
	if !errors.Is(err, upstream) {
		t.Errorf("Expected wrapped upstream error, got %v", err)
	}
}

func TestBuildExtractionPrompt(t *testing.T) {
	prompt := BuildExtractionPrompt("回答本文")
	for _, want := range []string{"回答本文", "法令名,条,項,号", "1行につき1件"} {
		if !strings.Contains(prompt, want) {
			t.Errorf("Expected prompt to contain %q", want)
		}
	}
}
