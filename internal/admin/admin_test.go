package admin

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/louisbranch/muster/internal/recruit/domain"
	"github.com/louisbranch/muster/internal/storage/bbolt"
)

func newService(t *testing.T) *Service {
	t.Helper()
	store, err := bbolt.Open(filepath.Join(t.TempDir(), "config.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return NewService(store)
}

func TestCategoryLifecycle(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	cfg := domain.ChannelConfig{CategoryID: "cat-1", RecruitmentTargetID: "lobby"}
	if err := svc.RegisterCategory(ctx, cfg); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := svc.RegisterCategory(ctx, cfg); !errors.Is(err, ErrCategoryExists) {
		t.Fatalf("duplicate register: %v, want ErrCategoryExists", err)
	}

	got, err := svc.DescribeCategory(ctx, "cat-1")
	if err != nil {
		t.Fatalf("describe: %v", err)
	}
	if got.HistoryCategory != domain.DefaultHistoryCategory {
		t.Fatalf("history category = %q, want default applied", got.HistoryCategory)
	}

	if err := svc.SetCapacityDefault(ctx, "cat-1", 4); err != nil {
		t.Fatalf("set capacity: %v", err)
	}
	if err := svc.SetOptions(ctx, "cat-1", domain.Flags{ShowCapacity: true}); err != nil {
		t.Fatalf("set options: %v", err)
	}
	if err := svc.SetRecruitmentTarget(ctx, "cat-1", ""); err != nil {
		t.Fatalf("clear target: %v", err)
	}

	got, err = svc.DescribeCategory(ctx, "cat-1")
	if err != nil {
		t.Fatalf("describe: %v", err)
	}
	if got.CapacityDefault != 4 || !got.Flags.ShowCapacity || got.RecruitmentEnabled() {
		t.Fatalf("category = %+v, want capacity 4, show capacity, recruitment disabled", got)
	}

	if err := svc.RemoveCategory(ctx, "cat-1"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if err := svc.RemoveCategory(ctx, "cat-1"); !errors.Is(err, ErrCategoryNotFound) {
		t.Fatalf("remove again: %v, want ErrCategoryNotFound", err)
	}
	if _, err := svc.DescribeCategory(ctx, "cat-1"); !errors.Is(err, ErrCategoryNotFound) {
		t.Fatalf("describe removed: %v, want ErrCategoryNotFound", err)
	}
}

func TestListCategoriesOrdered(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	for _, categoryID := range []string{"cat-b", "cat-a", "cat-c"} {
		cfg := domain.ChannelConfig{CategoryID: categoryID}
		if err := svc.RegisterCategory(ctx, cfg); err != nil {
			t.Fatalf("register %s: %v", categoryID, err)
		}
	}
	configs, err := svc.ListCategories(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	want := []string{"cat-a", "cat-b", "cat-c"}
	if len(configs) != len(want) {
		t.Fatalf("categories = %d, want %d", len(configs), len(want))
	}
	for i, categoryID := range want {
		if configs[i].CategoryID != categoryID {
			t.Fatalf("categories[%d] = %q, want %q", i, configs[i].CategoryID, categoryID)
		}
	}
}

func TestSelectorCatalog(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	selector := domain.SelectorConfig{
		ID:           "mode",
		Label:        "Mode",
		Options:      []string{"casual", "ranked"},
		DefaultValue: "casual",
	}
	if err := svc.CreateSelector(ctx, selector); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := svc.CreateSelector(ctx, selector); !errors.Is(err, ErrSelectorExists) {
		t.Fatalf("duplicate create: %v, want ErrSelectorExists", err)
	}
	if err := svc.CreateSelector(ctx, domain.SelectorConfig{ID: "bad", Label: "Bad"}); !errors.Is(err, domain.ErrNoSelectorOptions) {
		t.Fatalf("create without options: %v, want ErrNoSelectorOptions", err)
	}

	if err := svc.RenameSelectorLabel(ctx, "mode", "Game mode"); err != nil {
		t.Fatalf("rename label: %v", err)
	}
	if err := svc.AddSelectorOptions(ctx, "mode", "custom"); err != nil {
		t.Fatalf("add option: %v", err)
	}
	if err := svc.AddSelectorOptions(ctx, "mode", "ranked"); !errors.Is(err, domain.ErrDuplicateSelectorOption) {
		t.Fatalf("add duplicate option: %v, want ErrDuplicateSelectorOption", err)
	}

	// Removing the default clears it.
	if err := svc.RemoveSelectorOptions(ctx, "mode", "casual"); err != nil {
		t.Fatalf("remove default option: %v", err)
	}
	got, err := svc.DescribeSelector(ctx, "mode")
	if err != nil {
		t.Fatalf("describe: %v", err)
	}
	if got.Label != "Game mode" {
		t.Fatalf("label = %q, want Game mode", got.Label)
	}
	if got.DefaultValue != "" {
		t.Fatalf("default = %q, want cleared", got.DefaultValue)
	}
	if len(got.Options) != 2 {
		t.Fatalf("options = %v, want 2 left", got.Options)
	}

	if err := svc.RemoveSelectorOptions(ctx, "mode", "nope"); !errors.Is(err, ErrOptionNotFound) {
		t.Fatalf("remove unknown option: %v, want ErrOptionNotFound", err)
	}
	if err := svc.RemoveSelectorOptions(ctx, "mode", "ranked", "custom"); !errors.Is(err, domain.ErrNoSelectorOptions) {
		t.Fatalf("remove all options: %v, want ErrNoSelectorOptions", err)
	}
}

func TestAttachDetachSelector(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	if err := svc.RegisterCategory(ctx, domain.ChannelConfig{CategoryID: "cat-1"}); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := svc.AttachSelector(ctx, "cat-1", "mode"); !errors.Is(err, ErrSelectorNotFound) {
		t.Fatalf("attach unknown selector: %v, want ErrSelectorNotFound", err)
	}

	selector := domain.SelectorConfig{ID: "mode", Label: "Mode", Options: []string{"casual"}}
	if err := svc.CreateSelector(ctx, selector); err != nil {
		t.Fatalf("create selector: %v", err)
	}
	if err := svc.AttachSelector(ctx, "cat-1", "mode"); err != nil {
		t.Fatalf("attach: %v", err)
	}
	if err := svc.AttachSelector(ctx, "cat-1", "mode"); !errors.Is(err, ErrSelectorAttached) {
		t.Fatalf("attach again: %v, want ErrSelectorAttached", err)
	}

	cfg, err := svc.DescribeCategory(ctx, "cat-1")
	if err != nil {
		t.Fatalf("describe: %v", err)
	}
	if !cfg.HasSelector("mode") {
		t.Fatal("selector not attached")
	}

	if err := svc.DetachSelector(ctx, "cat-1", "mode"); err != nil {
		t.Fatalf("detach: %v", err)
	}
	if err := svc.DetachSelector(ctx, "cat-1", "mode"); !errors.Is(err, ErrSelectorNotAttached) {
		t.Fatalf("detach again: %v, want ErrSelectorNotAttached", err)
	}
}
