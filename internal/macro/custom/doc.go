// Package custom provides macro commands that run host-defined operations
// instead of changing a control.
//
// An Operation declares a parameter schema. Commands created by the
// Registry carry one parameter per schema slot, and the Registry validates
// a command against the schema before every execution. Besides Go
// operations such as Delay, operations can be written in Lua and loaded
// from a directory of scripts:
//
//	-- operation: FADE
//	-- description: Fade the overlay in
//	-- param: Duration FLOAT
//	-- param: Layer INTEGER OVERLAY_INDEX
//	for i = 1, 10 do
//	    if stopped() then return end
//	    sleep(params.Duration / 10)
//	end
package custom
