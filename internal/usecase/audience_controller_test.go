package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xavierca1/ligue-campaigns/internal/entity"
	"github.com/xavierca1/ligue-campaigns/internal/infra/queue"
)

func newTestController(gw *fakeAudienceGateway, editable bool) (*AudienceController, *fakeNotifier, *fakePublisher) {
	notifier := &fakeNotifier{}
	events := &fakePublisher{}
	ctrl := NewAudienceController("camp-1", editable, gw, notifier, events, nil, AudienceOptions{
		PerPage:  entity.DefaultPerPage,
		Debounce: 20 * time.Millisecond,
		UserID:   "user-1",
	})
	return ctrl, notifier, events
}

func TestStartLoadsBothCollections(t *testing.T) {
	gw := &fakeAudienceGateway{}
	ctrl, _, _ := newTestController(gw, true)
	defer ctrl.Close()

	assert.Equal(t, StateInitialLoad, ctrl.Snapshot().State)

	ctrl.Start(context.Background())

	snap := ctrl.Snapshot()
	assert.Equal(t, StateReady, snap.State)
	assert.Len(t, snap.Available.Data, 3)
	assert.Len(t, snap.Audience.Data, 1)

	available, audience := gw.counts()
	assert.Equal(t, 1, available)
	assert.Equal(t, 1, audience)
	assert.Equal(t, entity.DefaultPerPage, gw.lastAvailable().perPage)
}

func TestOnChangeReportsFetchingThenReady(t *testing.T) {
	gw := &fakeAudienceGateway{}
	ctrl, _, _ := newTestController(gw, true)
	defer ctrl.Close()
	ctrl.Start(context.Background())

	var states []LoadState
	ctrl.OnChange(func(s AudienceSnapshot) { states = append(states, s.State) })

	ctrl.Refresh(context.Background())

	require.NotEmpty(t, states)
	assert.Equal(t, StateFetching, states[0])
	assert.Equal(t, StateReady, states[len(states)-1])
}

// Edições com menos de debounce de intervalo geram uma única busca, com os
// valores finais.
func TestSetFilterDebouncesIntoSingleFetch(t *testing.T) {
	gw := &fakeAudienceGateway{}
	ctrl, _, _ := newTestController(gw, true)
	defer ctrl.Close()
	ctrl.Start(context.Background())

	for _, v := range []string{"A", "An", "Ana"} {
		require.NoError(t, ctrl.SetFilter(entity.FilterName, v))
		time.Sleep(5 * time.Millisecond)
	}
	require.NoError(t, ctrl.SetFilter(entity.FilterCity, "Recife"))

	assert.Equal(t, "Ana", ctrl.Snapshot().Filters.Name)
	assert.Equal(t, "", ctrl.Snapshot().AppliedFilters.Name)

	assert.Eventually(t, func() bool {
		available, _ := gw.counts()
		return available == 2
	}, time.Second, 5*time.Millisecond)

	time.Sleep(60 * time.Millisecond)
	available, audience := gw.counts()
	assert.Equal(t, 2, available)
	assert.Equal(t, 2, audience)

	last := gw.lastAvailable()
	assert.Equal(t, "Ana", last.filters.Name)
	assert.Equal(t, "Recife", last.filters.City)
	assert.Equal(t, "Ana", ctrl.Snapshot().AppliedFilters.Name)
}

func TestSetFilterUnknownKey(t *testing.T) {
	ctrl, _, _ := newTestController(&fakeAudienceGateway{}, true)
	defer ctrl.Close()

	err := ctrl.SetFilter("cpf", "123")

	assert.True(t, HasCode(err, CodeInvalidInput))
}

func TestApplyFiltersFetchesImmediately(t *testing.T) {
	gw := &fakeAudienceGateway{}
	ctrl, _, _ := newTestController(gw, true)
	defer ctrl.Close()
	ctrl.Start(context.Background())

	require.NoError(t, ctrl.SetFilter(entity.FilterName, "Bia"))
	require.NoError(t, ctrl.ApplyFilters(context.Background(), entity.Filters{City: "Olinda"}))

	last := gw.lastAvailable()
	assert.Equal(t, "Olinda", last.filters.City)
	assert.Equal(t, "", last.filters.Name)

	// o disparo pendente do debounce foi descartado
	time.Sleep(50 * time.Millisecond)
	available, _ := gw.counts()
	assert.Equal(t, 2, available)
}

func TestBlurTagsNormalizes(t *testing.T) {
	ctrl, _, _ := newTestController(&fakeAudienceGateway{}, true)
	defer ctrl.Close()

	require.NoError(t, ctrl.SetFilter(entity.FilterTags, "vip, , cliente ,, fiel"))
	require.NoError(t, ctrl.BlurTags())

	assert.Equal(t, "vip, cliente, fiel", ctrl.Snapshot().Filters.Tags)
}

func TestPageChangeRefetchesBothCollections(t *testing.T) {
	gw := &fakeAudienceGateway{
		availableFn: func(_ int, _ entity.Filters, page int) (entity.ContactPage, error) {
			return contactPage(page, 3, "c1"), nil
		},
	}
	ctrl, _, _ := newTestController(gw, true)
	defer ctrl.Close()
	ctrl.Start(context.Background())

	assert.True(t, ctrl.SetAvailablePage(context.Background(), 2))

	available, audience := gw.counts()
	assert.Equal(t, 2, available)
	assert.Equal(t, 2, audience)
	assert.Equal(t, 2, gw.lastAvailable().page)
	assert.Equal(t, 2, ctrl.Snapshot().AvailablePage)
	assert.Equal(t, 1, ctrl.Snapshot().AudiencePage)
}

func TestPageChangeOutOfBoundsIsIgnored(t *testing.T) {
	gw := &fakeAudienceGateway{
		availableFn: func(_ int, _ entity.Filters, page int) (entity.ContactPage, error) {
			return contactPage(page, 3, "c1"), nil
		},
	}
	ctrl, _, _ := newTestController(gw, true)
	defer ctrl.Close()
	ctrl.Start(context.Background())

	assert.False(t, ctrl.SetAvailablePage(context.Background(), 0))
	assert.False(t, ctrl.SetAvailablePage(context.Background(), 4))
	assert.False(t, ctrl.SetAvailablePage(context.Background(), 1))
	assert.False(t, ctrl.SetAudiencePage(context.Background(), 2))

	available, _ := gw.counts()
	assert.Equal(t, 1, available)
}

func TestStaleResponseIsDiscarded(t *testing.T) {
	release := make(chan struct{})
	gw := &fakeAudienceGateway{
		availableFn: func(call int, _ entity.Filters, page int) (entity.ContactPage, error) {
			if call == 1 {
				<-release
				return contactPage(page, 1, "old"), nil
			}
			return contactPage(page, 1, "new"), nil
		},
	}
	ctrl, _, _ := newTestController(gw, true)
	defer ctrl.Close()

	done := make(chan struct{})
	go func() {
		ctrl.Refresh(context.Background())
		close(done)
	}()
	require.Eventually(t, func() bool {
		available, _ := gw.counts()
		return available == 1
	}, time.Second, time.Millisecond)

	ctrl.Refresh(context.Background())
	close(release)
	<-done

	snap := ctrl.Snapshot()
	require.Len(t, snap.Available.Data, 1)
	assert.Equal(t, "new", snap.Available.Data[0].ID)
	assert.Equal(t, StateReady, snap.State)
}

func TestFailedFetchKeepsPreviousData(t *testing.T) {
	gw := &fakeAudienceGateway{
		availableFn: func(call int, _ entity.Filters, page int) (entity.ContactPage, error) {
			if call > 1 {
				return entity.ContactPage{}, errors.New("timeout")
			}
			return contactPage(page, 1, "c1", "c2"), nil
		},
	}
	ctrl, notifier, _ := newTestController(gw, true)
	defer ctrl.Close()
	ctrl.Start(context.Background())

	ctrl.Refresh(context.Background())

	snap := ctrl.Snapshot()
	assert.Len(t, snap.Available.Data, 2)
	assert.Len(t, snap.Audience.Data, 1)
	assert.Equal(t, StateReady, snap.State)

	_, failures := notifier.counts()
	assert.Equal(t, 1, failures)
}

func TestToggleAllUsesCurrentPage(t *testing.T) {
	ctrl, _, _ := newTestController(&fakeAudienceGateway{}, true)
	defer ctrl.Close()
	ctrl.Start(context.Background())

	ctrl.ToggleAll()
	assert.ElementsMatch(t, []string{"c1", "c2", "c3"}, ctrl.Selected())
	assert.True(t, ctrl.Snapshot().Controls().AddSelectedEnabled)

	ctrl.ToggleAll()
	assert.Empty(t, ctrl.Selected())
	assert.False(t, ctrl.Snapshot().Controls().AddSelectedEnabled)
}

func TestAddSelectedClearsSelectionAndRefetches(t *testing.T) {
	gw := &fakeAudienceGateway{
		availableFn: func(_ int, _ entity.Filters, page int) (entity.ContactPage, error) {
			return contactPage(page, 3, "c1", "c2", "c3"), nil
		},
	}
	ctrl, notifier, events := newTestController(gw, true)
	defer ctrl.Close()
	ctrl.Start(context.Background())
	require.True(t, ctrl.SetAvailablePage(context.Background(), 2))

	ctrl.Toggle("c1")
	ctrl.Toggle("c3")
	err := ctrl.AddSelectedToAudience(context.Background(), ctrl.Selected())

	require.NoError(t, err)
	assert.Equal(t, [][]string{{"c1", "c3"}}, gw.added)
	assert.Empty(t, ctrl.Selected())
	assert.Equal(t, 2, ctrl.Snapshot().AvailablePage)

	available, audience := gw.counts()
	assert.Equal(t, 3, available)
	assert.Equal(t, 3, audience)

	successes, _ := notifier.counts()
	assert.Equal(t, 1, successes)

	require.Len(t, events.events, 1)
	assert.Equal(t, queue.ActionAddSelected, events.events[0].Action)
	assert.Equal(t, "camp-1", events.events[0].CampaignID)
	assert.Equal(t, "user-1", events.events[0].UserID)
	assert.Equal(t, []string{"c1", "c3"}, events.events[0].ContactIDs)
}

// O cursor fica onde estava mesmo quando a recarga devolve menos páginas.
func TestMutationKeepsCursorBeyondShrunkTotalPages(t *testing.T) {
	gw := &fakeAudienceGateway{
		availableFn: func(call int, _ entity.Filters, page int) (entity.ContactPage, error) {
			if call <= 2 {
				return contactPage(page, 3, "c1", "c2"), nil
			}
			return contactPage(page, 2), nil
		},
	}
	ctrl, _, _ := newTestController(gw, true)
	defer ctrl.Close()
	ctrl.Start(context.Background())
	require.True(t, ctrl.SetAvailablePage(context.Background(), 3))

	ctrl.Toggle("c1")
	require.NoError(t, ctrl.AddSelectedToAudience(context.Background(), ctrl.Selected()))

	snap := ctrl.Snapshot()
	assert.Equal(t, 3, snap.AvailablePage)
	assert.Equal(t, 2, snap.Available.TotalPages)
	assert.Empty(t, ctrl.Selected())
	assert.Equal(t, 3, gw.lastAvailable().page)

	available, audience := gw.counts()
	assert.Equal(t, 3, available)
	assert.Equal(t, 3, audience)

	assert.True(t, ctrl.SetAvailablePage(context.Background(), 2))
	assert.Equal(t, 2, ctrl.Snapshot().AvailablePage)
}

func TestAddSelectedWithEmptyListIsNoop(t *testing.T) {
	gw := &fakeAudienceGateway{}
	ctrl, notifier, events := newTestController(gw, true)
	defer ctrl.Close()

	require.NoError(t, ctrl.AddSelectedToAudience(context.Background(), nil))

	assert.Empty(t, gw.added)
	assert.Empty(t, events.events)
	successes, failures := notifier.counts()
	assert.Zero(t, successes+failures)
	available, _ := gw.counts()
	assert.Zero(t, available)
}

func TestAddAllFilteredSendsFiltersAndPage(t *testing.T) {
	gw := &fakeAudienceGateway{}
	ctrl, _, events := newTestController(gw, true)
	defer ctrl.Close()
	ctrl.Start(context.Background())

	filters := entity.Filters{City: "Recife", Gender: entity.FilterNone}
	require.NoError(t, ctrl.AddAllFilteredToAudience(context.Background(), filters, 1, 12))

	require.Len(t, gw.addAll, 1)
	assert.Equal(t, filters, gw.addAll[0].Filters)
	assert.Equal(t, 1, gw.addAll[0].CurrentPage)
	assert.Equal(t, 12, gw.addAll[0].PerPage)

	require.Len(t, events.events, 1)
	assert.Equal(t, map[string]string{"city": "Recife"}, events.events[0].Filters)
}

func TestRemoveOneAndRemoveAll(t *testing.T) {
	gw := &fakeAudienceGateway{}
	ctrl, _, events := newTestController(gw, true)
	defer ctrl.Close()
	ctrl.Start(context.Background())

	require.NoError(t, ctrl.RemoveOneFromAudience(context.Background(), "a1"))
	require.NoError(t, ctrl.RemoveAllFromAudience(context.Background()))

	assert.Equal(t, []string{"a1"}, gw.removed)
	assert.Equal(t, 1, gw.removedAll)
	require.Len(t, events.events, 2)
	assert.Equal(t, queue.ActionRemoveOne, events.events[0].Action)
	assert.Equal(t, queue.ActionRemoveAll, events.events[1].Action)
}

func TestRemoveAllOnEmptyAudienceIsNoop(t *testing.T) {
	gw := &fakeAudienceGateway{
		audienceFn: func(_ int, page int) (entity.ContactPage, error) {
			return contactPage(page, 1), nil
		},
	}
	ctrl, _, _ := newTestController(gw, true)
	defer ctrl.Close()
	ctrl.Start(context.Background())

	assert.False(t, ctrl.Snapshot().Controls().RemoveAllEnabled)
	require.NoError(t, ctrl.RemoveAllFromAudience(context.Background()))
	assert.Zero(t, gw.removedAll)
}

func TestMutationFailureIsNotifiedAndKeepsSelection(t *testing.T) {
	gw := &fakeAudienceGateway{mutationErr: errors.New("500")}
	ctrl, notifier, events := newTestController(gw, true)
	defer ctrl.Close()
	ctrl.Start(context.Background())

	ctrl.Toggle("c1")
	err := ctrl.AddSelectedToAudience(context.Background(), ctrl.Selected())

	require.Error(t, err)
	assert.True(t, IsTechnicalError(err))
	assert.True(t, HasCode(err, CodeBackendError))
	assert.Equal(t, []string{"c1"}, ctrl.Selected())
	assert.Empty(t, events.events)

	_, failures := notifier.counts()
	assert.Equal(t, 1, failures)
	available, _ := gw.counts()
	assert.Equal(t, 1, available)
}

func TestPublishFailureDoesNotFailMutation(t *testing.T) {
	gw := &fakeAudienceGateway{}
	ctrl, _, events := newTestController(gw, true)
	defer ctrl.Close()
	events.err = errors.New("broker fora")
	ctrl.Start(context.Background())

	assert.NoError(t, ctrl.RemoveOneFromAudience(context.Background(), "a1"))
	assert.Equal(t, []string{"a1"}, gw.removed)
}

// Campanha concluída: filtros e mutações ficam bloqueados.
func TestLockedCampaignRejectsEverything(t *testing.T) {
	gw := &fakeAudienceGateway{}
	ctrl, _, events := newTestController(gw, entity.IsEditableStatus(entity.CampaignFinished))
	defer ctrl.Close()
	ctrl.Start(context.Background())

	ctx := context.Background()
	errs := []error{
		ctrl.SetFilter(entity.FilterName, "Ana"),
		ctrl.ApplyFilters(ctx, entity.Filters{Name: "Ana"}),
		ctrl.AddSelectedToAudience(ctx, []string{"c1"}),
		ctrl.AddAllFilteredToAudience(ctx, entity.Filters{}, 1, 12),
		ctrl.RemoveOneFromAudience(ctx, "a1"),
		ctrl.RemoveAllFromAudience(ctx),
	}
	for _, err := range errs {
		assert.True(t, HasCode(err, CodeCampaignLocked), "erro inesperado: %v", err)
		assert.True(t, IsDomainError(err))
	}

	controls := ctrl.Snapshot().Controls()
	assert.Equal(t, Controls{}, controls)

	assert.Empty(t, gw.added)
	assert.Empty(t, gw.addAll)
	assert.Empty(t, gw.removed)
	assert.Zero(t, gw.removedAll)
	assert.Empty(t, events.events)
}
