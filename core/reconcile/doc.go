// Package reconcile maps layer snapshots onto scene resources while rebuilding as
// little as possible.
//
// # Architecture
//
// A Controller owns exactly one scene resource for one layer. It is driven by a
// Strategy that knows how to build, patch and tear down the resource of one layer
// type.
//
// 1. Watcher: on every update the strategy registers the fields the resource
// depends on, by name, together with the patches that apply a change in place.
//
// 2. Diff: the named record is compared with the one from the previous update. A
// changed field without patches requests a rebuild; the other changed fields queue
// their patches.
//
// 3. Apply: the rebuild runs first, then every queued patch in registration order.
// One update performs at most one rebuild however many fields changed.
//
// # Lifecycle
//
//	Uninitialized --Add--> Initialized --Remove--> Removed
//
// Update before Add only moves the baseline, so the first build sees the latest
// snapshot and later diffs start from it. A removed controller rejects every call.
//
// # Usage Example
//
//	ctrl, err := reconcile.NewController(l, env, tileset.NewStrategy(env))
//	if err != nil {
//	    return err
//	}
//	if err := ctrl.Add(ctx); err != nil {
//	    return err
//	}
//	// later, with a new snapshot of the same layer
//	err = ctrl.Update(ctx, next)
package reconcile
