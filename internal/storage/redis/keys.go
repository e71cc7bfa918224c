package redis

import (
	"fmt"

	"github.com/mcoot/courgette-crush/internal/model"
)

// Key prefix for all game-related data
const keyPrefix = "courgette"

// playerKey returns the Redis key for a Player
func playerKey(id model.PlayerID) string {
	return fmt.Sprintf("%s:player:%s", keyPrefix, id)
}

// registeredPlayerKey returns the Redis key for a RegisteredPlayer
func registeredPlayerKey(playerID model.PlayerID) string {
	return fmt.Sprintf("%s:registered_player:%s", keyPrefix, playerID)
}

// usernameIndexKey returns the Redis key for the username -> player_id index
func usernameIndexKey(username string) string {
	return fmt.Sprintf("%s:idx:username:%s", keyPrefix, username)
}

// gameKey returns the Redis key for a Game
func gameKey(id model.GameID) string {
	return fmt.Sprintf("%s:game:%s", keyPrefix, id)
}

// gamesForPlayerIndexKey returns the Redis key for the SET of a player's game keys
func gamesForPlayerIndexKey(playerID model.PlayerID) string {
	return fmt.Sprintf("%s:idx:games_for_player:%s", keyPrefix, playerID)
}

// highScoreKey returns the Redis key for a player's best score record
func highScoreKey(playerID model.PlayerID) string {
	return fmt.Sprintf("%s:highscore:%s", keyPrefix, playerID)
}

// leaderboardKey returns the Redis key for the ZSET of best scores by player
func leaderboardKey() string {
	return fmt.Sprintf("%s:leaderboard", keyPrefix)
}
