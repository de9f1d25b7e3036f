package nakama

const (
	// RpcFindScoreboard is the Nakama RPC id clients call to find or create
	// the shared scoreboard match.
	RpcFindScoreboard = "find_scoreboard"

	// MatchNameScoreboard is the authoritative match handler name registered
	// with Nakama.
	MatchNameScoreboard = "riichi_scoreboard"

	// StorageCollection and StorageKey locate the single persisted match
	// document. The document is written under the system user so any
	// scorekeeper client resumes the same table.
	StorageCollection = "riichi_score"
	StorageKey        = "match_state"
)

// Op codes for client messages and server events.
const (
	// Client -> Server
	OpConfirmTsumo      int64 = 1
	OpConfirmRon        int64 = 2
	OpConfirmDraw       int64 = 3
	OpPreviewSettlement int64 = 4
	OpUndo              int64 = 5
	OpRedo              int64 = 6
	OpEditRound         int64 = 7
	OpResetMatch        int64 = 8
	OpRenamePlayers     int64 = 9

	// Server -> Client events
	OpStateUpdate   int64 = 101
	OpPreviewResult int64 = 102
	OpError         int64 = 103
)
