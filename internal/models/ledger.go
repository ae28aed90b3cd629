package models

import (
	"fmt"
	"slices"
)

// VoteOutcome - состояние голосования после принятого голоса
type VoteOutcome struct {
	VoteCount int  `json:"voteCount"`
	Verified  bool `json:"verified"`
}

// HasVoted сообщает, голосовал ли токен за алерт
func (a *Alert) HasVoted(voterToken string) bool {
	return slices.Contains(a.VoterTokens, voterToken)
}

// RegisterVote добавляет голос токена к алерту.
// Повторный голос того же токена отклоняется без изменения состояния.
// Флаг verified выставляется при достижении VerificationThreshold и больше не сбрасывается.
// Вызывающий обязан сериализовать вызовы для одного алерта.
func (a *Alert) RegisterVote(voterToken string) (VoteOutcome, error) {
	if voterToken == "" {
		return a.VoteOutcome(), fmt.Errorf("%w: voter token is required", ErrValidation)
	}
	if a.HasVoted(voterToken) {
		return a.VoteOutcome(), fmt.Errorf("%w: token already voted for alert %s", ErrDuplicateVote, a.ID)
	}

	a.VoterTokens = append(a.VoterTokens, voterToken)
	a.VoteCount++
	if !a.Verified && a.VoteCount >= VerificationThreshold {
		a.Verified = true
	}
	return a.VoteOutcome(), nil
}

// VoteOutcome возвращает текущее состояние голосования
func (a *Alert) VoteOutcome() VoteOutcome {
	return VoteOutcome{VoteCount: a.VoteCount, Verified: a.Verified}
}
