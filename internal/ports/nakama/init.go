package nakama

import (
	"context"
	"database/sql"

	"github.com/heroiclabs/nakama-common/runtime"
)

// InitModule wires RPCs and the scoreboard match handler for the Nakama
// runtime.
func InitModule(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, initializer runtime.Initializer) error {
	if err := initializer.RegisterRpc(RpcFindScoreboard, RpcFindMatch); err != nil {
		return err
	}

	if err := initializer.RegisterMatch(MatchNameScoreboard, func(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule) (runtime.Match, error) {
		return newMatchHandler(), nil
	}); err != nil {
		return err
	}

	logger.Info("Riichi scoreboard module loaded.")
	return nil
}
