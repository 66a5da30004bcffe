package service_test

import (
	"context"
	"sync"
	"testing"

	"humboard/events"
	"humboard/models"
	"humboard/repository"
	"humboard/repository/testutil"
	"humboard/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ledgerIsConsistent asserts the reconciliation invariant for one user:
// balance minus starting balance equals the sum of their ledger entries
func ledgerIsConsistent(t *testing.T, ctx context.Context, testDB *testutil.TestDatabase, userID int64) {
	t.Helper()

	userRepo := repository.NewUserRepository(testDB.DB)
	txnRepo := repository.NewTransactionRepository(testDB.DB)

	user, err := userRepo.GetByID(ctx, userID)
	require.NoError(t, err)
	require.NotNil(t, user)

	sum, err := txnRepo.SumByUser(ctx, userID)
	require.NoError(t, err)

	assert.Equal(t, user.HumBalance-user.StartingBalance, sum,
		"user %d: balance %d, starting %d, ledger sum %d",
		userID, user.HumBalance, user.StartingBalance, sum)
}

func TestQuestionLifecycle_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test")
	}

	testDB := testutil.SetupTestDatabase(t)
	ctx := context.Background()

	eventBus := events.NewBus()
	uowFactory := repository.NewUnitOfWorkFactory(testDB.DB, eventBus)

	userService := service.NewUserService(uowFactory)
	questionService := service.NewQuestionService(uowFactory)
	answerService := service.NewAnswerService(uowFactory)
	voteService := service.NewVoteService(uowFactory)
	adoptionService := service.NewAdoptionService(uowFactory)

	// Register the full cast
	asker, err := userService.Register(ctx, "asker")
	require.NoError(t, err)
	assert.Equal(t, int64(5), asker.HumBalance)

	author, err := userService.Register(ctx, "author")
	require.NoError(t, err)
	rejectedAuthor, err := userService.Register(ctx, "rejected")
	require.NoError(t, err)
	voter1, err := userService.Register(ctx, "voter1")
	require.NoError(t, err)
	voter2, err := userService.Register(ctx, "voter2")
	require.NoError(t, err)

	// Ask: 5 - 3 = 2
	question, err := questionService.Ask(ctx, asker.ID, "How do settlements work?", "Full details", "economy")
	require.NoError(t, err)

	askerAfterAsk, err := userService.GetUser(ctx, asker.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), askerAfterAsk.HumBalance)

	// Answers: each author 5 - 2 = 3
	adopted, err := answerService.PostAnswer(ctx, author.ID, question.ID, "Like this")
	require.NoError(t, err)
	_, err = answerService.PostAnswer(ctx, rejectedAuthor.ID, question.ID, "Or like that")
	require.NoError(t, err)

	// Votes: each voter 5 - 2 = 3, stake on the adopted answer is 4
	_, err = voteService.CastVote(ctx, adopted.ID, voter1.ID)
	require.NoError(t, err)
	_, err = voteService.CastVote(ctx, adopted.ID, voter2.ID)
	require.NoError(t, err)

	// A voter cannot double down on the same answer
	_, err = voteService.CastVote(ctx, adopted.ID, voter1.ID)
	require.ErrorIs(t, err, service.ErrAlreadyVoted)

	voter1Charged, err := userService.GetUser(ctx, voter1.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), voter1Charged.HumBalance, "rejected duplicate must not charge")

	// Only the owner settles
	_, err = adoptionService.Adopt(ctx, question.ID, adopted.ID, author.ID)
	require.ErrorIs(t, err, service.ErrNotQuestionOwner)

	// Settlement: stake 4, reward 8
	result, err := adoptionService.Adopt(ctx, question.ID, adopted.ID, asker.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(4), result.Stake)
	assert.Equal(t, int64(8), result.Reward)

	// Adopted author: 3 + 8 = 11, rep +2
	authorSettled, err := userService.GetUser(ctx, author.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(11), authorSettled.HumBalance)
	assert.Equal(t, int64(2), authorSettled.RepScore)

	// Rejected author: 3 + 1 = 4, no rep
	rejectedSettled, err := userService.GetUser(ctx, rejectedAuthor.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(4), rejectedSettled.HumBalance)
	assert.Equal(t, int64(0), rejectedSettled.RepScore)

	// Voters made whole: 3 + 2 = 5, rep +1
	for _, voterID := range []int64{voter1.ID, voter2.ID} {
		voterSettled, err := userService.GetUser(ctx, voterID)
		require.NoError(t, err)
		assert.Equal(t, int64(5), voterSettled.HumBalance)
		assert.Equal(t, int64(1), voterSettled.RepScore)
	}

	// The question is closed for good
	detail, err := questionService.Get(ctx, question.ID)
	require.NoError(t, err)
	assert.True(t, detail.Question.IsClosed)
	require.NotNil(t, detail.Question.AdoptedAnswerID)
	assert.Equal(t, adopted.ID, *detail.Question.AdoptedAnswerID)

	// No late entries on a closed question
	_, err = voteService.CastVote(ctx, adopted.ID, asker.ID)
	require.ErrorIs(t, err, service.ErrQuestionClosed)
	_, err = answerService.PostAnswer(ctx, voter1.ID, question.ID, "Too late")
	require.ErrorIs(t, err, service.ErrQuestionClosed)

	// Every participant's ledger reconciles
	for _, userID := range []int64{asker.ID, author.ID, rejectedAuthor.ID, voter1.ID, voter2.ID} {
		ledgerIsConsistent(t, ctx, testDB, userID)
	}
}

func TestAdoption_ConcurrentSettlement_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test")
	}

	testDB := testutil.SetupTestDatabase(t)
	ctx := context.Background()

	eventBus := events.NewBus()
	uowFactory := repository.NewUnitOfWorkFactory(testDB.DB, eventBus)

	userService := service.NewUserService(uowFactory)
	questionService := service.NewQuestionService(uowFactory)
	answerService := service.NewAnswerService(uowFactory)
	voteService := service.NewVoteService(uowFactory)
	adoptionService := service.NewAdoptionService(uowFactory)

	asker, err := userService.Register(ctx, "asker")
	require.NoError(t, err)
	author, err := userService.Register(ctx, "author")
	require.NoError(t, err)
	voter, err := userService.Register(ctx, "voter")
	require.NoError(t, err)

	question, err := questionService.Ask(ctx, asker.ID, "Race?", "Who wins", "economy")
	require.NoError(t, err)
	answer, err := answerService.PostAnswer(ctx, author.ID, question.ID, "Exactly one")
	require.NoError(t, err)
	_, err = voteService.CastVote(ctx, answer.ID, voter.ID)
	require.NoError(t, err)

	// Two settlements race on the same question. The exclusive row lock
	// serializes them: exactly one succeeds, the loser sees the closed flag.
	var wg sync.WaitGroup
	results := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, results[i] = adoptionService.Adopt(ctx, question.ID, answer.ID, asker.ID)
		}(i)
	}
	wg.Wait()

	var succeeded, closed int
	for _, err := range results {
		switch {
		case err == nil:
			succeeded++
		case assert.ErrorIs(t, err, service.ErrQuestionClosed):
			closed++
		}
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, 1, closed)

	// Rewards applied exactly once: author 3 + 4 = 7, voter back to 5
	authorSettled, err := userService.GetUser(ctx, author.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(7), authorSettled.HumBalance)
	assert.Equal(t, int64(2), authorSettled.RepScore)

	voterSettled, err := userService.GetUser(ctx, voter.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(5), voterSettled.HumBalance)

	for _, userID := range []int64{asker.ID, author.ID, voter.ID} {
		ledgerIsConsistent(t, ctx, testDB, userID)
	}
}

func TestViewMetering_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test")
	}

	testDB := testutil.SetupTestDatabase(t)
	ctx := context.Background()

	eventBus := events.NewBus()
	uowFactory := repository.NewUnitOfWorkFactory(testDB.DB, eventBus)

	userService := service.NewUserService(uowFactory)
	questionService := service.NewQuestionService(uowFactory)

	asker, err := userService.Register(ctx, "asker")
	require.NoError(t, err)
	viewer, err := userService.Register(ctx, "viewer")
	require.NoError(t, err)

	question, err := questionService.Ask(ctx, asker.ID, "Worth a look?", "Content", "general")
	require.NoError(t, err)

	// Metered view charges the viewer one HUM per view, every time
	for i := 0; i < 3; i++ {
		_, err = questionService.View(ctx, question.ID, viewer.ID)
		require.NoError(t, err)
	}

	viewerCharged, err := userService.GetUser(ctx, viewer.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), viewerCharged.HumBalance)

	// The free read does not charge
	_, err = questionService.Get(ctx, question.ID)
	require.NoError(t, err)
	viewerStill, err := userService.GetUser(ctx, viewer.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), viewerStill.HumBalance)

	txns, err := userService.GetTransactions(ctx, viewer.ID, 10)
	require.NoError(t, err)
	require.Len(t, txns, 3)
	for _, txn := range txns {
		assert.Equal(t, models.TransactionReasonView, txn.Reason)
		assert.Equal(t, int64(-1), txn.Amount)
	}

	ledgerIsConsistent(t, ctx, testDB, viewer.ID)
	ledgerIsConsistent(t, ctx, testDB, asker.ID)
}
