package domain

type State string

const StateAwaitingVoice State = "awaiting_voice"
