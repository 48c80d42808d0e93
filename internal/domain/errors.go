package domain

import "errors"

var (
	// ErrLiquidityUnavailable marks a liquidity analysis that could not be
	// fetched. Callers must not treat it as zero slippage.
	ErrLiquidityUnavailable = errors.New("liquidity analysis unavailable")

	// ErrInvalidTransition is returned when a lifecycle command is not
	// permitted from the currently mirrored auto-trader state.
	ErrInvalidTransition = errors.New("invalid auto-trader transition")

	// ErrCommandInFlight is returned when an auto-trader command is issued
	// while a previous one has not settled.
	ErrCommandInFlight = errors.New("auto-trader command already in flight")
)
