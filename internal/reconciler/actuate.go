package reconciler

import (
	"context"
	"errors"
	"log/slog"

	"github.com/sanity-io/litter"

	"github.com/darkbrains/netip-controller/internal/cloud"
	"github.com/darkbrains/netip-controller/internal/k8sutil"
)

// actuateState tracks the IP bindings actually achieved so far, seeded
// from discover and mutated as each action succeeds, so report can
// compute final counts even after a partial-plan abort.
type actuateState struct {
	boundIPToNode map[string]string
}

// actuate executes the plan sequentially per §4.1 Phase 4. An Attach or
// (non-idempotent) Detach failure aborts the remainder of the plan;
// Label/Unlabel/Evict failures are logged and counted but never abort.
func (r *Reconciler) actuate(ctx context.Context, driver cloud.Driver, d *discoverResult, actions []Action, evictTargets []evictionTarget) (*actuateState, []Action, error) {
	state := &actuateState{boundIPToNode: cloneMap(d.boundIPToNode)}
	evictByNode := groupEvictTargets(evictTargets)

	r.logger.Debug("actuating plan", slog.String("plan", litter.Sdump(actions)))

	executed := make([]Action, 0, len(actions))
	for _, action := range actions {
		ctx, cancel := context.WithTimeout(ctx, r.actuateTimeout)

		var err error
		switch action.Kind {
		case ActionAttach:
			err = r.actuateAttach(ctx, driver, d, state, action)
		case ActionDetach:
			err = r.actuateDetach(ctx, driver, d, state, action)
		case ActionLabel:
			err = k8sutil.LabelNodeReady(ctx, r.k8sClient, action.Node)
		case ActionUnlabel:
			err = k8sutil.UnlabelNodeReady(ctx, r.k8sClient, action.Node)
		case ActionEvict:
			err = r.actuateEvict(ctx, evictByNode[action.Node])
		}
		cancel()

		action.Ok = err == nil
		executed = append(executed, action)

		if err == nil {
			continue
		}

		switch action.Kind {
		case ActionAttach, ActionDetach:
			r.logger.Error("actuate aborted plan", slog.String("action", action.Kind.String()),
				slog.String("ip", action.IP), slog.String("node", action.Node), slog.Any("err", err))
			return state, executed, err
		default:
			r.logger.Error("non-aborting actuate failure", slog.String("action", action.Kind.String()),
				slog.String("node", action.Node), slog.Any("err", err))
		}
	}
	return state, executed, nil
}

func (r *Reconciler) actuateAttach(ctx context.Context, driver cloud.Driver, d *discoverResult, state *actuateState, action Action) error {
	node, ok := d.nodeByName[action.Node]
	if !ok {
		return errInternalf("attach target node %s not found in discovery snapshot", action.Node)
	}
	if err := driver.AttachIP(ctx, node.Instance, action.IP); err != nil {
		return err
	}
	state.boundIPToNode[action.IP] = action.Node
	return nil
}

func (r *Reconciler) actuateDetach(ctx context.Context, driver cloud.Driver, d *discoverResult, state *actuateState, action Action) error {
	node, ok := d.nodeByName[action.Node]
	if !ok {
		return errInternalf("detach target node %s not found in discovery snapshot", action.Node)
	}
	if err := driver.DetachIP(ctx, node.Instance, action.IP); err != nil {
		return err
	}
	delete(state.boundIPToNode, action.IP)
	return nil
}

func (r *Reconciler) actuateEvict(ctx context.Context, targets []evictionTarget) error {
	var errs []error
	for _, t := range targets {
		if err := k8sutil.EvictPod(ctx, r.k8sClient, t.Namespace, t.Name); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func groupEvictTargets(targets []evictionTarget) map[string][]evictionTarget {
	out := make(map[string][]evictionTarget, len(targets))
	for _, t := range targets {
		out[t.Node] = append(out[t.Node], t)
	}
	return out
}

func cloneMap(m map[string]string) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
