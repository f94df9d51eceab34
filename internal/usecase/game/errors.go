package game

import (
	"github.com/pkg/errors"
)

var errNotEnoughPlayers = errors.New("a game needs exactly two players")
