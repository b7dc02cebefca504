package order

import (
	"errors"
	"fmt"
)

// Action is the symbolic order action from a strategy file.
type Action string

const (
	ActionMarketOpenLong   Action = "market_open_long"
	ActionMarketOpenShort  Action = "market_open_short"
	ActionLimitOpenLong    Action = "limit_open_long"
	ActionLimitOpenShort   Action = "limit_open_short"
	ActionMarketCloseLong  Action = "market_close_long"
	ActionMarketCloseShort Action = "market_close_short"
	ActionLimitCloseLong   Action = "limit_close_long"
	ActionLimitCloseShort  Action = "limit_close_short"
	ActionAddToPosition    Action = "add_to_position"
	ActionAddCollateral    Action = "add_collateral"
	ActionPartialClose     Action = "partial_close"
	ActionFullClose        Action = "full_close"
	ActionCustom           Action = "custom"
)

// ErrUnknownAction marks actions outside the recognized table.
var ErrUnknownAction = errors.New("unknown action")

// Flags are the three booleans place_order_v3 derives from an action:
// side, direction and order type.
type Flags struct {
	IsLong     bool
	IsIncrease bool
	IsMarket   bool
}

// Overrides carries the optional boolean fields of an intent. A nil field
// means "use the action's default".
type Overrides struct {
	IsLong     *bool
	IsIncrease *bool
	IsMarket   *bool
}

// Resolve maps an action to its execution flags. The eight explicit
// market/limit x open/close x long/short actions have fixed defaults; the
// ambiguous actions have no inherent side and fall back to long/market
// unless the intent says otherwise. An explicitly supplied override always
// wins, even against a fixed default.
func Resolve(action Action, o Overrides) (Flags, error) {
	f, err := actionDefaults(action, o)
	if err != nil {
		return Flags{}, err
	}
	if o.IsLong != nil {
		f.IsLong = *o.IsLong
	}
	if o.IsIncrease != nil {
		f.IsIncrease = *o.IsIncrease
	}
	if o.IsMarket != nil {
		f.IsMarket = *o.IsMarket
	}
	return f, nil
}

func actionDefaults(action Action, o Overrides) (Flags, error) {
	switch action {
	case ActionMarketOpenLong:
		return Flags{IsLong: true, IsIncrease: true, IsMarket: true}, nil
	case ActionMarketOpenShort:
		return Flags{IsLong: false, IsIncrease: true, IsMarket: true}, nil
	case ActionLimitOpenLong:
		return Flags{IsLong: true, IsIncrease: true, IsMarket: false}, nil
	case ActionLimitOpenShort:
		return Flags{IsLong: false, IsIncrease: true, IsMarket: false}, nil
	case ActionMarketCloseLong:
		return Flags{IsLong: true, IsIncrease: false, IsMarket: true}, nil
	case ActionMarketCloseShort:
		return Flags{IsLong: false, IsIncrease: false, IsMarket: true}, nil
	case ActionLimitCloseLong:
		return Flags{IsLong: true, IsIncrease: false, IsMarket: false}, nil
	case ActionLimitCloseShort:
		return Flags{IsLong: false, IsIncrease: false, IsMarket: false}, nil
	case ActionAddToPosition:
		return Flags{IsLong: boolOr(o.IsLong, true), IsIncrease: true, IsMarket: boolOr(o.IsMarket, true)}, nil
	case ActionAddCollateral:
		// collateral top-ups are always market executions
		return Flags{IsLong: boolOr(o.IsLong, true), IsIncrease: true, IsMarket: true}, nil
	case ActionPartialClose, ActionFullClose:
		return Flags{IsLong: boolOr(o.IsLong, true), IsIncrease: false, IsMarket: boolOr(o.IsMarket, true)}, nil
	case ActionCustom:
		return Flags{IsLong: boolOr(o.IsLong, true), IsIncrease: boolOr(o.IsIncrease, true), IsMarket: boolOr(o.IsMarket, true)}, nil
	}
	return Flags{}, fmt.Errorf("%w: %q", ErrUnknownAction, action)
}

func boolOr(v *bool, fallback bool) bool {
	if v == nil {
		return fallback
	}
	return *v
}
