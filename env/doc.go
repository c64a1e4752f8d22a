// Package env is the module environment: the catalog of verified logic
// modules grouped into categories, the registry of live instances created
// from them, and the per-tick dispatch that drives every instance.
//
// # Catalog
//
// AddModuleFromBytes compiles a module, checks it against the contract and
// stores it under a category, creating the category on first use. Failed
// additions change nothing. Category and module ids are assigned from
// counters owned by the Environment and only advance on success.
//
// Adding a category or module under a name already in use replaces it.
// Instances created from the replaced definition are unaffected: an
// instance copies its definition's name and shares nothing else with the
// catalog.
//
// # Instances
//
// Instantiate creates a uniquely identified instance at a position. OnTick
// calls draw(x, y, rotation) on each instance; cursor_coords(x, y), width()
// and height() are optional and used by the interaction helpers.
package env
