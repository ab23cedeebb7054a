package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vietanh2810/election-admin/internal/domain"
	"github.com/vietanh2810/election-admin/internal/testutil"
)

var (
	alice = domain.User{ID: 1, Email: "alice@example.com", Name: "Alice"}
	bob   = domain.User{ID: 2, Email: "bob@example.com", Name: "Bob"}
)

func newTestElectionService() (*ElectionService, *testutil.MemoryElectionRepository, *testutil.RecordingPublisher) {
	repo := testutil.NewMemoryElectionRepository()
	events := &testutil.RecordingPublisher{}
	svc := NewElectionService(repo, events)
	svc.now = func() time.Time { return time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC) }
	return svc, repo, events
}

func TestElectionService_CreateElection(t *testing.T) {
	svc, _, events := newTestElectionService()
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := svc.CreateElection(ctx, alice, "Board election")
		require.NoError(t, err)
	}

	elections, err := svc.ListElections(ctx, alice)
	require.NoError(t, err)
	assert.Len(t, elections, 3)
	for _, e := range elections {
		assert.Equal(t, domain.ElectionDraft, e.Status)
		assert.Equal(t, alice.ID, e.OwnerID)
	}

	others, err := svc.ListElections(ctx, bob)
	require.NoError(t, err)
	assert.Empty(t, others)

	assert.Len(t, events.Events(), 3)
}

func TestElectionService_CreateElection_Validation(t *testing.T) {
	svc, _, events := newTestElectionService()

	_, err := svc.CreateElection(context.Background(), alice, "   ")
	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.Empty(t, events.Events())
}

func TestElectionService_Lifecycle(t *testing.T) {
	svc, _, events := newTestElectionService()
	ctx := context.Background()

	election, err := svc.CreateElection(ctx, alice, "Board")
	require.NoError(t, err)

	_, err = svc.EndElection(ctx, alice, election.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidState, "end before launch")

	launched, err := svc.LaunchElection(ctx, alice, election.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ElectionLaunched, launched.Status)
	assert.NotNil(t, launched.LaunchedAt)

	_, err = svc.LaunchElection(ctx, alice, election.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidState, "second launch")

	ended, err := svc.EndElection(ctx, alice, election.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ElectionEnded, ended.Status)

	_, err = svc.EndElection(ctx, alice, election.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidState, "second end")

	_, err = svc.LaunchElection(ctx, alice, election.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidState, "launch after end")

	stored, err := svc.GetElection(ctx, alice, election.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ElectionEnded, stored.Status)

	assert.Equal(t, []domain.ElectionEventType{
		domain.EventElectionCreated,
		domain.EventElectionLaunched,
		domain.EventElectionEnded,
	}, events.Types())
}

func TestElectionService_RenameElection(t *testing.T) {
	svc, _, _ := newTestElectionService()
	ctx := context.Background()

	election, err := svc.CreateElection(ctx, alice, "Board")
	require.NoError(t, err)
	_, err = svc.LaunchElection(ctx, alice, election.ID)
	require.NoError(t, err)

	_, err = svc.RenameElection(ctx, alice, election.ID, "  Board 2024  ")
	require.NoError(t, err)

	stored, err := svc.GetElection(ctx, alice, election.ID)
	require.NoError(t, err)
	assert.Equal(t, "Board 2024", stored.Name)
	assert.Equal(t, domain.ElectionLaunched, stored.Status)

	_, err = svc.RenameElection(ctx, alice, election.ID, "")
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = svc.RenameElection(ctx, bob, election.ID, "Stolen")
	assert.ErrorIs(t, err, domain.ErrNotOwner)
}

func TestElectionService_DeleteElection_Cascades(t *testing.T) {
	svc, repo, _ := newTestElectionService()
	ctx := context.Background()

	election, err := svc.CreateElection(ctx, alice, "Board")
	require.NoError(t, err)
	question, err := svc.AddQuestion(ctx, alice, election.ID, "Chair", "")
	require.NoError(t, err)
	_, err = svc.AddOption(ctx, alice, election.ID, question.ID, "Alice")
	require.NoError(t, err)
	_, err = svc.AddOption(ctx, alice, election.ID, question.ID, "Bob")
	require.NoError(t, err)

	keep, err := svc.CreateElection(ctx, alice, "Other")
	require.NoError(t, err)
	_, err = svc.AddQuestion(ctx, alice, keep.ID, "Kept", "")
	require.NoError(t, err)

	_, err = svc.LaunchElection(ctx, alice, election.ID)
	require.NoError(t, err)

	require.NoError(t, svc.DeleteElection(ctx, alice, election.ID))

	_, err = svc.GetElection(ctx, alice, election.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	questions, options := repo.Counts()
	assert.Equal(t, 1, questions)
	assert.Equal(t, 0, options)

	assert.ErrorIs(t, svc.DeleteElection(ctx, alice, election.ID), domain.ErrNotFound)
}

func TestElectionService_Questions(t *testing.T) {
	svc, _, _ := newTestElectionService()
	ctx := context.Background()

	election, err := svc.CreateElection(ctx, alice, "Board")
	require.NoError(t, err)

	first, err := svc.AddQuestion(ctx, alice, election.ID, "Chair", "Who chairs the board?")
	require.NoError(t, err)
	second, err := svc.AddQuestion(ctx, alice, election.ID, "Treasurer", "")
	require.NoError(t, err)
	assert.Equal(t, 1, first.Position)
	assert.Equal(t, 2, second.Position)

	questions, err := svc.ListQuestions(ctx, alice, election.ID)
	require.NoError(t, err)
	assert.Len(t, questions, 2)

	edited, err := svc.EditQuestion(ctx, alice, election.ID, first.ID, "Chairperson", "")
	require.NoError(t, err)
	assert.Equal(t, "Chairperson", edited.Title)
	assert.Equal(t, 1, edited.Position)

	require.NoError(t, svc.DeleteQuestion(ctx, alice, election.ID, first.ID))
	questions, err = svc.ListQuestions(ctx, alice, election.ID)
	require.NoError(t, err)
	require.Len(t, questions, 1)
	assert.Equal(t, second.ID, questions[0].ID)

	third, err := svc.AddQuestion(ctx, alice, election.ID, "Secretary", "")
	require.NoError(t, err)
	assert.Equal(t, 3, third.Position)

	_, err = svc.AddQuestion(ctx, alice, election.ID, "", "")
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestElectionService_Options_DuplicatesAllowed(t *testing.T) {
	svc, _, _ := newTestElectionService()
	ctx := context.Background()

	election, err := svc.CreateElection(ctx, alice, "Board")
	require.NoError(t, err)
	question, err := svc.AddQuestion(ctx, alice, election.ID, "Chair", "")
	require.NoError(t, err)

	_, err = svc.AddOption(ctx, alice, election.ID, question.ID, "Yes")
	require.NoError(t, err)
	_, err = svc.AddOption(ctx, alice, election.ID, question.ID, "Yes")
	require.NoError(t, err)

	options, err := svc.ListOptions(ctx, alice, election.ID, question.ID)
	require.NoError(t, err)
	require.Len(t, options, 2)
	assert.Equal(t, options[0].Value, options[1].Value)
	assert.NotEqual(t, options[0].ID, options[1].ID)

	edited, err := svc.EditOption(ctx, alice, election.ID, question.ID, options[1].ID, "No")
	require.NoError(t, err)
	assert.Equal(t, "No", edited.Value)

	got, err := svc.GetOption(ctx, alice, election.ID, question.ID, options[1].ID)
	require.NoError(t, err)
	assert.Equal(t, "No", got.Value)

	require.NoError(t, svc.DeleteOption(ctx, alice, election.ID, question.ID, options[0].ID))
	options, err = svc.ListOptions(ctx, alice, election.ID, question.ID)
	require.NoError(t, err)
	assert.Len(t, options, 1)

	_, err = svc.AddOption(ctx, alice, election.ID, question.ID, " ")
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestElectionService_BallotLockedAfterLaunch(t *testing.T) {
	svc, _, _ := newTestElectionService()
	ctx := context.Background()

	election, err := svc.CreateElection(ctx, alice, "Board")
	require.NoError(t, err)
	question, err := svc.AddQuestion(ctx, alice, election.ID, "Chair", "")
	require.NoError(t, err)
	option, err := svc.AddOption(ctx, alice, election.ID, question.ID, "Alice")
	require.NoError(t, err)

	_, err = svc.LaunchElection(ctx, alice, election.ID)
	require.NoError(t, err)

	_, err = svc.AddQuestion(ctx, alice, election.ID, "Late", "")
	assert.ErrorIs(t, err, domain.ErrInvalidState)
	_, err = svc.EditQuestion(ctx, alice, election.ID, question.ID, "Changed", "")
	assert.ErrorIs(t, err, domain.ErrInvalidState)
	assert.ErrorIs(t, svc.DeleteQuestion(ctx, alice, election.ID, question.ID), domain.ErrInvalidState)
	_, err = svc.AddOption(ctx, alice, election.ID, question.ID, "Bob")
	assert.ErrorIs(t, err, domain.ErrInvalidState)
	_, err = svc.EditOption(ctx, alice, election.ID, question.ID, option.ID, "Carol")
	assert.ErrorIs(t, err, domain.ErrInvalidState)
	assert.ErrorIs(t, svc.DeleteOption(ctx, alice, election.ID, question.ID, option.ID), domain.ErrInvalidState)

	// invalid state is reported before invalid input
	_, err = svc.AddQuestion(ctx, alice, election.ID, "", "")
	assert.ErrorIs(t, err, domain.ErrInvalidState)

	stored, err := svc.GetElection(ctx, alice, election.ID)
	require.NoError(t, err)
	require.Len(t, stored.Questions, 1)
	assert.Equal(t, "Chair", stored.Questions[0].Title)
	assert.Len(t, stored.Questions[0].Options, 1)
}

func TestElectionService_Ownership(t *testing.T) {
	svc, _, _ := newTestElectionService()
	ctx := context.Background()

	election, err := svc.CreateElection(ctx, alice, "Board")
	require.NoError(t, err)
	question, err := svc.AddQuestion(ctx, alice, election.ID, "Chair", "")
	require.NoError(t, err)
	option, err := svc.AddOption(ctx, alice, election.ID, question.ID, "Alice")
	require.NoError(t, err)

	_, err = svc.GetElection(ctx, bob, election.ID)
	assert.ErrorIs(t, err, domain.ErrNotOwner)
	_, err = svc.LaunchElection(ctx, bob, election.ID)
	assert.ErrorIs(t, err, domain.ErrNotOwner)
	assert.ErrorIs(t, svc.DeleteElection(ctx, bob, election.ID), domain.ErrNotOwner)
	_, err = svc.ListQuestions(ctx, bob, election.ID)
	assert.ErrorIs(t, err, domain.ErrNotOwner)
	_, err = svc.GetQuestion(ctx, bob, election.ID, question.ID)
	assert.ErrorIs(t, err, domain.ErrNotOwner)
	_, err = svc.AddOption(ctx, bob, election.ID, question.ID, "Mallory")
	assert.ErrorIs(t, err, domain.ErrNotOwner)
	assert.ErrorIs(t, svc.DeleteOption(ctx, bob, election.ID, question.ID, option.ID), domain.ErrNotOwner)

	// ownership is checked before the child lookup
	_, err = svc.GetQuestion(ctx, bob, election.ID, 9999)
	assert.ErrorIs(t, err, domain.ErrNotOwner)
}

func TestElectionService_NotFound(t *testing.T) {
	svc, _, _ := newTestElectionService()
	ctx := context.Background()

	_, err := svc.GetElection(ctx, alice, 42)
	assert.ErrorIs(t, err, ErrElectionNotFound)
	_, err = svc.LaunchElection(ctx, alice, 42)
	assert.ErrorIs(t, err, ErrElectionNotFound)

	election, err := svc.CreateElection(ctx, alice, "Board")
	require.NoError(t, err)
	other, err := svc.CreateElection(ctx, alice, "Other")
	require.NoError(t, err)
	question, err := svc.AddQuestion(ctx, alice, other.ID, "Chair", "")
	require.NoError(t, err)
	option, err := svc.AddOption(ctx, alice, other.ID, question.ID, "Alice")
	require.NoError(t, err)

	// a question that exists under another election is not found here
	_, err = svc.GetQuestion(ctx, alice, election.ID, question.ID)
	assert.ErrorIs(t, err, ErrQuestionNotFound)
	_, err = svc.EditQuestion(ctx, alice, election.ID, question.ID, "Moved", "")
	assert.ErrorIs(t, err, ErrQuestionNotFound)

	sibling, err := svc.AddQuestion(ctx, alice, other.ID, "Treasurer", "")
	require.NoError(t, err)
	_, err = svc.GetOption(ctx, alice, other.ID, sibling.ID, option.ID)
	assert.ErrorIs(t, err, ErrOptionNotFound)
	assert.ErrorIs(t, svc.DeleteOption(ctx, alice, other.ID, sibling.ID, option.ID), ErrOptionNotFound)
}

func TestElectionService_Events(t *testing.T) {
	svc, _, events := newTestElectionService()
	ctx := context.Background()

	election, err := svc.CreateElection(ctx, alice, "Board")
	require.NoError(t, err)
	question, err := svc.AddQuestion(ctx, alice, election.ID, "Chair", "")
	require.NoError(t, err)
	option, err := svc.AddOption(ctx, alice, election.ID, question.ID, "Alice")
	require.NoError(t, err)
	require.NoError(t, svc.DeleteElection(ctx, alice, election.ID))

	recorded := events.Events()
	require.Len(t, recorded, 4)

	added := recorded[2]
	assert.Equal(t, domain.EventOptionAdded, added.Type)
	assert.Equal(t, election.ID, added.ElectionID)
	assert.Equal(t, alice.ID, added.OwnerID)
	assert.Equal(t, question.ID, added.QuestionID)
	assert.Equal(t, option.ID, added.OptionID)
	assert.Equal(t, domain.ElectionDraft, added.Status)

	assert.Equal(t, domain.EventElectionDeleted, recorded[3].Type)
}

func TestElectionService_BallotReadiness(t *testing.T) {
	svc, _, _ := newTestElectionService()
	ctx := context.Background()

	election, err := svc.CreateElection(ctx, alice, "Board")
	require.NoError(t, err)
	assert.Len(t, svc.BallotReadiness(election), 1)

	question, err := svc.AddQuestion(ctx, alice, election.ID, "Chair", "")
	require.NoError(t, err)
	for _, v := range []string{"Alice", "Bob"} {
		_, err = svc.AddOption(ctx, alice, election.ID, question.ID, v)
		require.NoError(t, err)
	}

	full, err := svc.GetElection(ctx, alice, election.ID)
	require.NoError(t, err)
	assert.Empty(t, svc.BallotReadiness(full))

	// an empty ballot does not prevent launching
	empty, err := svc.CreateElection(ctx, alice, "Empty")
	require.NoError(t, err)
	_, err = svc.LaunchElection(ctx, alice, empty.ID)
	assert.NoError(t, err)
}

func TestElectionService_NilPublisher(t *testing.T) {
	svc := NewElectionService(testutil.NewMemoryElectionRepository(), nil)

	_, err := svc.CreateElection(context.Background(), alice, "Board")
	assert.NoError(t, err)
}
