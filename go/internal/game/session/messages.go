package session

import (
	"github.com/mcdev12/shiritori/go/internal/game/state"
	"github.com/mcdev12/shiritori/go/internal/models"
)

type msg interface{ isSessionMsg() }

type request struct {
	msg  msg
	done chan struct{}
}

type setGame struct{ game models.Game }

func (setGame) isSessionMsg() {}

type setSelf struct{ playerID string }

func (setSelf) isSessionMsg() {}

type setJoining struct{ joining bool }

func (setJoining) isSessionMsg() {}

type reset struct{}

func (reset) isSessionMsg() {}

type getView struct {
	reply chan state.View
}

func (getView) isSessionMsg() {}
