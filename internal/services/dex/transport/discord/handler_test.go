package discord

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/google/go-cmp/cmp"
	apperrors "github.com/louisbranch/rowedex/internal/platform/errors"
	"github.com/louisbranch/rowedex/internal/platform/requestctx"
	"github.com/louisbranch/rowedex/internal/platform/telemetry/metrics"
	"github.com/louisbranch/rowedex/internal/services/dex/domain"
	"github.com/louisbranch/rowedex/internal/services/dex/reply"
	"github.com/louisbranch/rowedex/internal/services/dex/router"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.uber.org/zap/zaptest"
)

type fakeResponder struct {
	mu        sync.Mutex
	responses []*discordgo.InteractionResponse
	err       error
}

func (f *fakeResponder) InteractionRespond(_ *discordgo.Interaction, resp *discordgo.InteractionResponse, _ ...discordgo.RequestOption) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.responses = append(f.responses, resp)
	return f.err
}

func (f *fakeResponder) last(t *testing.T) *discordgo.InteractionResponse {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.responses) == 0 {
		t.Fatal("expected a response")
	}
	return f.responses[len(f.responses)-1]
}

type fakeLooker struct {
	query  string
	locale string
	reply  reply.Reply
	err    error
}

func (f *fakeLooker) Lookup(ctx context.Context, query string) (reply.Reply, error) {
	f.query = query
	f.locale = requestctx.LocaleFromContext(ctx)
	return f.reply, f.err
}

type fakeSuggester struct {
	partial    string
	candidates []domain.Candidate
	err        error
}

func (f *fakeSuggester) Suggest(_ context.Context, partial string) ([]domain.Candidate, error) {
	f.partial = partial
	return f.candidates, f.err
}

type fakeRouter struct {
	raw string
	out router.Outcome
}

func (f *fakeRouter) Route(_ context.Context, raw string) router.Outcome {
	f.raw = raw
	return f.out
}

func commandInteraction(kind discordgo.InteractionType, value string) *discordgo.Interaction {
	return &discordgo.Interaction{
		ID:      "int-1",
		Type:    kind,
		GuildID: "guild-1",
		Locale:  discordgo.PortugueseBR,
		Member:  &discordgo.Member{User: &discordgo.User{ID: "user-1"}},
		Data: discordgo.ApplicationCommandInteractionData{
			Name: CommandName,
			Options: []*discordgo.ApplicationCommandInteractionDataOption{{
				Name:    QueryOption,
				Type:    discordgo.ApplicationCommandOptionString,
				Value:   value,
				Focused: kind == discordgo.InteractionApplicationCommandAutocomplete,
			}},
		},
	}
}

func TestHandleCommandLooksUpQuery(t *testing.T) {
	t.Parallel()

	looker := &fakeLooker{reply: reply.Reply{
		Embeds:    []reply.Embed{{Title: "#257: Blaziken", Colour: 15630640, Thumbnail: "https://img"}},
		Controls:  []reply.Control{{ID: "levelup_btn__7", Label: "Level-Up"}},
		Ephemeral: true,
	}}
	resp := &fakeResponder{}
	h := NewHandler(looker, &fakeSuggester{}, &fakeRouter{}, zaptest.NewLogger(t), nil)

	if err := h.Handle(context.Background(), resp, commandInteraction(discordgo.InteractionApplicationCommand, "7")); err != nil {
		t.Fatalf("handle: %v", err)
	}
	if looker.query != "7" {
		t.Fatalf("query = %q, want %q", looker.query, "7")
	}
	if looker.locale != "pt-BR" {
		t.Fatalf("locale = %q, want pt-BR", looker.locale)
	}
	got := resp.last(t)
	if got.Type != discordgo.InteractionResponseChannelMessageWithSource {
		t.Fatalf("type = %v", got.Type)
	}
	if got.Data.Flags != discordgo.MessageFlagsEphemeral {
		t.Fatalf("flags = %v, want ephemeral", got.Data.Flags)
	}
	if got.Data.Embeds[0].Title != "#257: Blaziken" || got.Data.Embeds[0].Thumbnail.URL != "https://img" {
		t.Fatalf("embed = %+v", got.Data.Embeds[0])
	}
	row := got.Data.Components[0].(discordgo.ActionsRow)
	button := row.Components[0].(discordgo.Button)
	if button.CustomID != "levelup_btn__7" || button.Label != "Level-Up" {
		t.Fatalf("button = %+v", button)
	}
}

func TestHandleCommandStillRepliesOnStoreFailure(t *testing.T) {
	t.Parallel()

	failure := apperrors.New(apperrors.CodeStoreUnavailable, "down")
	looker := &fakeLooker{reply: reply.Reply{Content: "try again", Ephemeral: true}, err: failure}
	resp := &fakeResponder{}
	m := metrics.New()
	h := NewHandler(looker, &fakeSuggester{}, &fakeRouter{}, nil, m)

	err := h.Handle(context.Background(), resp, commandInteraction(discordgo.InteractionApplicationCommand, "Blaziken"))
	if !errors.Is(err, failure) {
		t.Fatalf("err = %v, want store failure", err)
	}
	if resp.last(t).Data.Content != "try again" {
		t.Fatalf("content = %q", resp.last(t).Data.Content)
	}
	count, gatherErr := testutil.GatherAndCount(m.Registry(), "rowedex_dex_interactions_total")
	if gatherErr != nil || count != 1 {
		t.Fatalf("interaction series = %d, %v, want 1", count, gatherErr)
	}
}

func TestHandleAutocompleteReturnsIDChoices(t *testing.T) {
	t.Parallel()

	suggester := &fakeSuggester{candidates: []domain.Candidate{{ID: 7, Name: "Blaziken"}, {ID: 8, Name: strings.Repeat("x", 120)}}}
	resp := &fakeResponder{}
	h := NewHandler(&fakeLooker{}, suggester, &fakeRouter{}, nil, nil)

	if err := h.Handle(context.Background(), resp, commandInteraction(discordgo.InteractionApplicationCommandAutocomplete, "Bla")); err != nil {
		t.Fatalf("handle: %v", err)
	}
	if suggester.partial != "Bla" {
		t.Fatalf("partial = %q", suggester.partial)
	}
	got := resp.last(t)
	if got.Type != discordgo.InteractionApplicationCommandAutocompleteResult {
		t.Fatalf("type = %v", got.Type)
	}
	if len(got.Data.Choices) != 2 || got.Data.Choices[0].Value != "7" || got.Data.Choices[0].Name != "Blaziken" {
		t.Fatalf("choices = %+v", got.Data.Choices)
	}
	if n := len([]rune(got.Data.Choices[1].Name)); n != maxChoiceNameRunes {
		t.Fatalf("long choice name = %d runes, want %d", n, maxChoiceNameRunes)
	}
}

func TestHandleAutocompleteEmptyOnError(t *testing.T) {
	t.Parallel()

	resp := &fakeResponder{}
	h := NewHandler(&fakeLooker{}, &fakeSuggester{err: fmt.Errorf("boom")}, &fakeRouter{}, nil, nil)
	if err := h.Handle(context.Background(), resp, commandInteraction(discordgo.InteractionApplicationCommandAutocomplete, "")); err == nil {
		t.Fatal("expected search error to be returned")
	}
	if got := resp.last(t).Data.Choices; len(got) != 0 {
		t.Fatalf("choices = %+v, want empty", got)
	}
}

func TestHandleComponentRoutes(t *testing.T) {
	t.Parallel()

	r := &fakeRouter{out: router.Outcome{
		State: router.StateResponded,
		Reply: reply.Reply{Content: "Level-Up moves\nEmber (Level 1)\n", Ephemeral: true},
	}}
	resp := &fakeResponder{}
	h := NewHandler(&fakeLooker{}, &fakeSuggester{}, r, nil, nil)

	i := &discordgo.Interaction{
		Type: discordgo.InteractionMessageComponent,
		User: &discordgo.User{ID: "dm-user"},
		Data: discordgo.MessageComponentInteractionData{CustomID: "levelup_btn__5"},
	}
	if err := h.Handle(context.Background(), resp, i); err != nil {
		t.Fatalf("handle: %v", err)
	}
	if r.raw != "levelup_btn__5" {
		t.Fatalf("routed %q", r.raw)
	}
	if got := resp.last(t).Data.Content; got != "Level-Up moves\nEmber (Level 1)\n" {
		t.Fatalf("content = %q", got)
	}
}

func TestHandleReportsRespondFailure(t *testing.T) {
	t.Parallel()

	resp := &fakeResponder{err: errors.New("unknown interaction")}
	h := NewHandler(&fakeLooker{}, &fakeSuggester{}, &fakeRouter{}, nil, nil)
	i := &discordgo.Interaction{
		Type: discordgo.InteractionMessageComponent,
		Data: discordgo.MessageComponentInteractionData{CustomID: "x"},
	}
	if err := h.Handle(context.Background(), resp, i); err == nil {
		t.Fatal("expected respond error")
	}
}

func TestHandleIgnoresOtherKinds(t *testing.T) {
	t.Parallel()

	resp := &fakeResponder{}
	h := NewHandler(&fakeLooker{}, &fakeSuggester{}, &fakeRouter{}, nil, nil)
	if err := h.Handle(context.Background(), resp, &discordgo.Interaction{Type: discordgo.InteractionPing}); err != nil {
		t.Fatalf("handle: %v", err)
	}
	if len(resp.responses) != 0 {
		t.Fatal("expected no response for ping")
	}
	if err := h.Handle(context.Background(), resp, nil); err == nil {
		t.Fatal("expected error for nil interaction")
	}
}

func TestResponseDataSplitsControlsIntoRows(t *testing.T) {
	t.Parallel()

	controls := make([]reply.Control, 7)
	for i := range controls {
		controls[i] = reply.Control{ID: fmt.Sprintf("c%d", i), Label: "L"}
	}
	data := ResponseData(reply.Reply{Controls: controls})
	if len(data.Components) != 2 {
		t.Fatalf("rows = %d, want 2", len(data.Components))
	}
	if n := len(data.Components[1].(discordgo.ActionsRow).Components); n != 2 {
		t.Fatalf("second row = %d buttons, want 2", n)
	}
	if data.Flags != 0 {
		t.Fatalf("flags = %v, want none for non-ephemeral reply", data.Flags)
	}
}

func TestResponseDataTruncatesContent(t *testing.T) {
	t.Parallel()

	data := ResponseData(reply.Reply{Content: strings.Repeat("a", 2500)})
	if n := len([]rune(data.Content)); n != maxContentRunes {
		t.Fatalf("content = %d runes, want %d", n, maxContentRunes)
	}
}

func TestCommandDefinition(t *testing.T) {
	t.Parallel()

	cmd := Command()
	want := []string{QueryOption}
	var got []string
	for _, opt := range cmd.Options {
		got = append(got, opt.Name)
		if !opt.Autocomplete || !opt.Required {
			t.Fatalf("option %q must be required with autocomplete", opt.Name)
		}
	}
	if cmd.Name != CommandName {
		t.Fatalf("name = %q", cmd.Name)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("options mismatch (-want +got):\n%s", diff)
	}
}
