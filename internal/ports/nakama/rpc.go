package nakama

import (
	"context"
	"database/sql"

	"github.com/heroiclabs/nakama-common/runtime"
)

// RpcFindMatch returns the ID of the shared scoreboard match, creating it
// on first call. All scorekeeper clients converge on one match instance.
//
// Payload: unused.
// Returns: String containing the Match ID.
func RpcFindMatch(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	userId, _ := ctx.Value(runtime.RUNTIME_CTX_USER_ID).(string)

	limit := 1
	authoritative := true
	labelQuery := "+label.game:riichi_score"
	minSize := 0
	maxSize := 64

	matches, err := nk.MatchList(ctx, limit, authoritative, "", &minSize, &maxSize, labelQuery)
	if err != nil {
		logger.Error("RpcFindMatch [User:%s]: Failed to list matches: %v", userId, err)
		return "", err
	}

	if len(matches) > 0 {
		matchId := matches[0].MatchId
		logger.Info("RpcFindMatch [User:%s]: Found existing scoreboard %s", userId, matchId)
		return matchId, nil
	}

	matchId, err := nk.MatchCreate(ctx, MatchNameScoreboard, nil)
	if err != nil {
		logger.Error("RpcFindMatch [User:%s]: Failed to create scoreboard: %v", userId, err)
		return "", err
	}

	logger.Info("RpcFindMatch [User:%s]: Created new scoreboard %s", userId, matchId)
	return matchId, nil
}
