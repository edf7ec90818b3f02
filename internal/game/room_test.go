package game

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nopDriver struct{}

func (nopDriver) SelectionTimedOut(string, uint64) {}
func (nopDriver) RoundTimedOut(string, uint64)     {}
func (nopDriver) TickElapsed(string, uint64)       {}
func (nopDriver) PauseElapsed(string, uint64)      {}

func newTestRoom(cfg Config) *Room {
	return NewRoom("TEST01", cfg, NewWordBank(DefaultMatchConfig()), nopDriver{}, zerolog.Nop())
}

func addPlayers(t *testing.T, r *Room, names ...string) []*Player {
	t.Helper()
	players := make([]*Player, 0, len(names))
	for _, name := range names {
		p, rejoined, err := r.AddPlayer(name)
		require.NoError(t, err)
		require.False(t, rejoined)
		players = append(players, p)
	}
	return players
}

// openRound drives the room from waiting into drawing on the given difficulty.
func openRound(t *testing.T, r *Room, difficulty Difficulty) *RoundStart {
	t.Helper()
	offer, err := r.StartGame()
	require.NoError(t, err)
	start := pickOption(t, r, offer, difficulty)
	return start
}

func pickOption(t *testing.T, r *Room, offer *TurnOffer, difficulty Difficulty) *RoundStart {
	t.Helper()
	for _, opt := range offer.Options {
		if opt.Difficulty == difficulty {
			start, err := r.SelectWord(opt.Word, opt.Difficulty)
			require.NoError(t, err)
			return start
		}
	}
	t.Fatalf("no %s option in offer", difficulty)
	return nil
}

func drawingCount(r *Room) int {
	n := 0
	for _, p := range r.Roster() {
		if p.IsDrawing {
			n++
		}
	}
	return n
}

func TestAddPlayerRules(t *testing.T) {
	r := newTestRoom(DefaultConfig())
	alice := addPlayers(t, r, "Alice")[0]

	_, _, err := r.AddPlayer("alice")
	assert.ErrorIs(t, err, ErrNameTaken)

	r.MarkDisconnected(alice.ID)
	back, rejoined, err := r.AddPlayer("ALICE")
	require.NoError(t, err)
	assert.True(t, rejoined)
	assert.Equal(t, alice.ID, back.ID)
	assert.True(t, back.Connected)
}

func TestAddPlayerCapacity(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxPlayers = 2
	r := newTestRoom(cfg)
	addPlayers(t, r, "a", "b")

	_, _, err := r.AddPlayer("c")
	assert.ErrorIs(t, err, ErrRoomFull)
}

func TestPlayerIDsUnique(t *testing.T) {
	r := newTestRoom(DefaultConfig())
	players := addPlayers(t, r, "a", "b", "c", "d")

	seen := make(map[string]bool)
	for _, p := range players {
		assert.False(t, seen[p.ID])
		seen[p.ID] = true
	}
}

func TestStartGameRequiresMinPlayers(t *testing.T) {
	r := newTestRoom(DefaultConfig())
	addPlayers(t, r, "solo")

	_, err := r.StartGame()
	assert.ErrorIs(t, err, ErrNotEnoughPlayers)
	assert.Equal(t, StatusWaiting, r.Status())
}

func TestStartGameFixesTurnOrder(t *testing.T) {
	r := newTestRoom(DefaultConfig())
	players := addPlayers(t, r, "a", "b", "c")

	offer, err := r.StartGame()
	require.NoError(t, err)
	assert.Equal(t, players[0].ID, offer.DrawerID)
	assert.Len(t, offer.Options, 3)
	assert.Equal(t, StatusSelecting, r.Status())
	assert.Equal(t, 1, drawingCount(r))

	_, err = r.StartGame()
	assert.ErrorIs(t, err, ErrWrongStatus)
}

func TestSelectWordRejectsOutsideOffer(t *testing.T) {
	r := newTestRoom(DefaultConfig())
	addPlayers(t, r, "a", "b")
	_, err := r.StartGame()
	require.NoError(t, err)

	_, err = r.SelectWord("not-offered", DifficultyEasy)
	assert.ErrorIs(t, err, ErrInvalidWord)
	assert.Equal(t, StatusSelecting, r.Status())
}

func TestDrawingRoleIsSingular(t *testing.T) {
	r := newTestRoom(DefaultConfig())
	players := addPlayers(t, r, "a", "b", "c")
	assert.Equal(t, 0, drawingCount(r))

	start := openRound(t, r, DifficultyEasy)
	assert.Equal(t, players[0].ID, start.DrawerID)
	assert.Equal(t, StatusDrawing, r.Status())
	assert.Equal(t, 1, drawingCount(r))

	out, ok := r.EndRoundTimeout(r.Epoch())
	require.True(t, ok)
	assert.Equal(t, players[1].ID, out.NextDrawerID)
	assert.Equal(t, 1, drawingCount(r))
}

func TestSubmitGuessScoring(t *testing.T) {
	r := newTestRoom(DefaultConfig())
	players := addPlayers(t, r, "drawer", "guesser")
	start := openRound(t, r, DifficultyHard)

	out := r.SubmitGuess(players[1].ID, start.Word)
	assert.Equal(t, GuessCorrect, out.Result)
	assert.Equal(t, 3, out.Points)
	require.NotNil(t, out.Round)
	assert.Equal(t, start.Word, out.Round.Word)

	roster := r.Roster()
	assert.Equal(t, 2, roster[0].Score) // drawer credit
	assert.Equal(t, 3, roster[1].Score)
}

func TestSubmitGuessRejectsDrawerAndRepeats(t *testing.T) {
	cfg := DefaultConfig()
	cfg.PointsToWin = 100
	r := newTestRoom(cfg)
	players := addPlayers(t, r, "drawer", "g1", "g2")
	start := openRound(t, r, DifficultyEasy)

	assert.Equal(t, GuessInvalid, r.SubmitGuess(players[0].ID, start.Word).Result)

	// multi-guesser rounds are not a thing here: a correct guess closes the
	// round, so the second submission lands outside drawing
	first := r.SubmitGuess(players[1].ID, start.Word)
	assert.Equal(t, GuessCorrect, first.Result)
	again := r.SubmitGuess(players[1].ID, start.Word)
	assert.Equal(t, GuessInvalid, again.Result)
	assert.Equal(t, 1, r.Roster()[1].Score)
}

func TestNearMissesHaveNoStateEffect(t *testing.T) {
	r := newTestRoom(DefaultConfig())
	players := addPlayers(t, r, "drawer", "guesser")
	start := openRound(t, r, DifficultyMedium)

	nearMiss := r.SubmitGuess(players[1].ID, start.Word+"x")
	assert.Equal(t, GuessClose, nearMiss.Result)

	wrong := r.SubmitGuess(players[1].ID, "zzzzzzzz")
	assert.Equal(t, GuessWrong, wrong.Result)

	assert.Equal(t, StatusDrawing, r.Status())
	assert.Equal(t, 0, r.Roster()[1].Score)
}

func TestWinEndsGame(t *testing.T) {
	cfg := DefaultConfig()
	cfg.PointsToWin = 3
	r := newTestRoom(cfg)
	players := addPlayers(t, r, "drawer", "guesser")
	start := openRound(t, r, DifficultyHard)

	out := r.SubmitGuess(players[1].ID, start.Word)
	assert.Equal(t, GuessCorrect, out.Result)
	require.NotNil(t, out.Winner)
	assert.Equal(t, players[1].ID, out.Winner.ID)
	assert.Nil(t, out.Round)
	assert.Equal(t, StatusGameOver, r.Status())
	require.Len(t, out.Scores, 2)
	assert.GreaterOrEqual(t, out.Scores[0].Score, out.Scores[1].Score)

	// terminal until reset
	_, err := r.StartGame()
	assert.ErrorIs(t, err, ErrWrongStatus)
}

func TestGameOverClearsDrawingRole(t *testing.T) {
	cfg := DefaultConfig()
	cfg.PointsToWin = 1
	r := newTestRoom(cfg)
	players := addPlayers(t, r, "drawer", "guesser")
	start := openRound(t, r, DifficultyEasy)

	out := r.SubmitGuess(players[1].ID, start.Word)
	require.NotNil(t, out.Winner)
	require.Equal(t, StatusGameOver, r.Status())
	assert.Equal(t, 0, drawingCount(r))

	// a reconnecting player's snapshot must agree
	snap := r.Snapshot(players[1].ID)
	for _, p := range snap.Players {
		assert.False(t, p.IsDrawing)
	}
}

func TestTurnRotationSkipsDisconnected(t *testing.T) {
	r := newTestRoom(DefaultConfig())
	players := addPlayers(t, r, "a", "b", "c")
	openRound(t, r, DifficultyEasy)

	r.MarkDisconnected(players[1].ID)
	out, ok := r.EndRoundTimeout(r.Epoch())
	require.True(t, ok)
	assert.Equal(t, players[2].ID, out.NextDrawerID)
	assert.Equal(t, StatusRoundEnd, r.Status())
}

func TestEndRoundFallsBackToWaiting(t *testing.T) {
	r := newTestRoom(DefaultConfig())
	players := addPlayers(t, r, "a", "b")
	openRound(t, r, DifficultyEasy)

	r.MarkDisconnected(players[1].ID)
	out, ok := r.EndRoundTimeout(r.Epoch())
	require.True(t, ok)
	assert.True(t, out.ToWaiting)
	assert.Equal(t, StatusWaiting, r.Status())
	assert.Equal(t, 0, drawingCount(r))
}

func TestDrawerLeavingEndsRound(t *testing.T) {
	r := newTestRoom(DefaultConfig())
	players := addPlayers(t, r, "a", "b", "c")
	start := openRound(t, r, DifficultyEasy)

	out := r.RemovePlayer(start.DrawerID)
	require.True(t, out.Removed)
	require.NotNil(t, out.Round)
	assert.Equal(t, start.Word, out.Round.Word)
	assert.Equal(t, players[1].ID, out.Round.NextDrawerID)
	assert.Equal(t, StatusRoundEnd, r.Status())
}

func TestDrawerLeavingDuringSelectionRotates(t *testing.T) {
	r := newTestRoom(DefaultConfig())
	players := addPlayers(t, r, "a", "b", "c")
	_, err := r.StartGame()
	require.NoError(t, err)

	out := r.RemovePlayer(players[0].ID)
	require.True(t, out.Removed)
	require.NotNil(t, out.Offer)
	assert.Equal(t, players[1].ID, out.Offer.DrawerID)
	assert.Equal(t, StatusSelecting, r.Status())
}

func TestPendingDrawerLeavingDuringPauseHandsRoleOn(t *testing.T) {
	r := newTestRoom(DefaultConfig())
	players := addPlayers(t, r, "a", "b", "c")
	openRound(t, r, DifficultyEasy)

	out, ok := r.EndRoundTimeout(r.Epoch())
	require.True(t, ok)
	require.Equal(t, players[1].ID, out.NextDrawerID)

	removed := r.RemovePlayer(players[1].ID)
	require.True(t, removed.Removed)
	assert.Equal(t, StatusRoundEnd, r.Status())
	assert.Equal(t, players[2].ID, r.CurrentDrawerID())

	offer, err := r.ContinueRound()
	require.NoError(t, err)
	assert.Equal(t, players[2].ID, offer.DrawerID)
}

func TestLastPlayerOutShutsRoomDown(t *testing.T) {
	r := newTestRoom(DefaultConfig())
	players := addPlayers(t, r, "a", "b")

	r.RemovePlayer(players[0].ID)
	out := r.RemovePlayer(players[1].ID)
	assert.True(t, out.Empty)
	assert.True(t, r.IsEmpty())
}

func TestStaleEpochTimersAreNoOps(t *testing.T) {
	r := newTestRoom(DefaultConfig())
	players := addPlayers(t, r, "a", "b")
	start := openRound(t, r, DifficultyEasy)
	drawingEpoch := r.Epoch()

	out := r.SubmitGuess(players[1].ID, start.Word)
	require.Equal(t, GuessCorrect, out.Result)
	require.Equal(t, StatusRoundEnd, r.Status())

	// a round timer firing after the winning guess must change nothing
	_, ok := r.EndRoundTimeout(drawingEpoch)
	assert.False(t, ok)
	_, ok = r.TickRemaining(drawingEpoch)
	assert.False(t, ok)
	assert.Equal(t, StatusRoundEnd, r.Status())
}

func TestAutoSelectPicksEasyOnce(t *testing.T) {
	r := newTestRoom(DefaultConfig())
	addPlayers(t, r, "a", "b")
	_, err := r.StartGame()
	require.NoError(t, err)
	epoch := r.Epoch()

	start, ok := r.AutoSelectWord(epoch)
	require.True(t, ok)
	assert.Equal(t, DifficultyEasy, start.Difficulty)
	assert.Equal(t, StatusDrawing, r.Status())

	_, ok = r.AutoSelectWord(epoch)
	assert.False(t, ok)
}

func TestContinueRoundReopensSelection(t *testing.T) {
	r := newTestRoom(DefaultConfig())
	players := addPlayers(t, r, "a", "b")
	start := openRound(t, r, DifficultyEasy)
	r.SubmitGuess(players[1].ID, start.Word)
	require.Equal(t, StatusRoundEnd, r.Status())

	offer, err := r.ContinueRound()
	require.NoError(t, err)
	assert.Equal(t, players[1].ID, offer.DrawerID)
	assert.Len(t, offer.Options, 3)
	assert.Equal(t, StatusSelecting, r.Status())
}

func TestResetClearsEverything(t *testing.T) {
	r := newTestRoom(DefaultConfig())
	players := addPlayers(t, r, "a", "b")
	start := openRound(t, r, DifficultyEasy)
	r.SubmitGuess(players[1].ID, start.Word)
	r.AppendMessage(players[0].ID, "gg", false, false, false)

	r.Reset()
	assert.Equal(t, StatusWaiting, r.Status())
	for _, p := range r.Roster() {
		assert.Zero(t, p.Score)
		assert.False(t, p.IsDrawing)
		assert.True(t, p.Connected)
	}
	snap := r.Snapshot(players[0].ID)
	assert.Empty(t, snap.Messages)
	assert.Empty(t, snap.Strokes)
	assert.Nil(t, snap.Round)
}

func TestSnapshotProjectsWordByRole(t *testing.T) {
	r := newTestRoom(DefaultConfig())
	players := addPlayers(t, r, "drawer", "guesser")
	start := openRound(t, r, DifficultyMedium)

	drawerView := r.Snapshot(players[0].ID)
	require.NotNil(t, drawerView.Round)
	assert.Equal(t, start.Word, drawerView.Round.Word)
	assert.Empty(t, drawerView.Round.Mask)

	guesserView := r.Snapshot(players[1].ID)
	require.NotNil(t, guesserView.Round)
	assert.Empty(t, guesserView.Round.Word)
	assert.Equal(t, MaskWord(start.Word), guesserView.Round.Mask)
}

func TestMessageLogBounded(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxMessages = 3
	r := newTestRoom(cfg)
	p := addPlayers(t, r, "a")[0]

	for i := 0; i < 5; i++ {
		_, ok := r.AppendMessage(p.ID, "hey", false, false, false)
		require.True(t, ok)
	}
	snap := r.Snapshot(p.ID)
	assert.Len(t, snap.Messages, 3)
}

func TestReconnectKeepsRole(t *testing.T) {
	r := newTestRoom(DefaultConfig())
	players := addPlayers(t, r, "a", "b")
	openRound(t, r, DifficultyEasy)

	require.True(t, r.MarkDisconnected(players[0].ID))
	require.True(t, r.Reconnect(players[0].ID))
	assert.Equal(t, players[0].ID, r.CurrentDrawerID())
	assert.Equal(t, 1, drawingCount(r))
}
