package app

import "github.com/ritksm/gdy/internal/domain"

// MinPlayersToStartGame defines the minimum number of occupied seats required to start a game.
const MinPlayersToStartGame = domain.MinPlayers
