package env

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/megs-sim/megs"
	"github.com/megs-sim/megs/engine"
	"github.com/megs-sim/megs/errors"
	"github.com/megs-sim/megs/host"
)

// instance is a live module instance. It holds a copy of its definition's
// names, not a reference, so catalog changes do not reach it.
type instance struct {
	handle   engine.Instance
	category string
	name     string
	location megs.Point
	rotation float32
	id       uuid.UUID
}

// InstanceInfo is a snapshot of a live instance.
type InstanceInfo struct {
	Category string
	Module   string
	Location megs.Point
	Rotation float32
	ID       uuid.UUID
}

// Hit is the result of hit testing: the instance under a point and the
// point's offset from the instance's location. Offset.Z is the instance's Z.
type Hit struct {
	Offset megs.Point
	ID     uuid.UUID
}

// Instantiate creates an instance of the module stored under category and
// module, placed at pos with rotation 0, and returns its id. Unknown names
// and engine failures leave the registry unchanged.
func (e *Environment) Instantiate(ctx context.Context, categoryName, moduleName string, pos megs.Point) (uuid.UUID, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	cat, ok := e.categories[categoryName]
	if !ok {
		return uuid.Nil, errors.NotFound(errors.PhaseInstantiate, "category", categoryName)
	}
	def, ok := cat.modules[moduleName]
	if !ok {
		return uuid.Nil, errors.NotFound(errors.PhaseInstantiate, "module", categoryName+"/"+moduleName)
	}

	id := e.newID()
	if _, dup := e.instances[id]; dup {
		panic(fmt.Sprintf("env: duplicate instance id %s", id))
	}

	handle, err := e.engine.Instantiate(ctx, def.compiled, id.String())
	if err != nil {
		return uuid.Nil, errors.New(errors.PhaseInstantiate, errors.KindInstantiation).
			Path(categoryName, moduleName).
			Detail("instantiate module").
			Cause(err).
			Build()
	}

	e.instances[id] = &instance{
		handle:   handle,
		category: categoryName,
		name:     def.name,
		location: pos,
		id:       id,
	}
	e.order = append(e.order, id)

	e.logger.Debug("instance created",
		zap.Stringer("instance", id),
		zap.String("category", categoryName),
		zap.String("module", moduleName),
		zap.Stringer("location", pos))
	return id, nil
}

// RemoveInstance closes and forgets an instance.
func (e *Environment) RemoveInstance(ctx context.Context, id uuid.UUID) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	inst, ok := e.instances[id]
	if !ok {
		return errors.NotFound(errors.PhaseRuntime, "instance", id.String())
	}
	delete(e.instances, id)
	for i, v := range e.order {
		if v == id {
			e.order = append(e.order[:i], e.order[i+1:]...)
			break
		}
	}
	return inst.handle.Close(ctx)
}

// OnTick calls draw(x, y, rotation) once on every live instance. An
// instance without draw is skipped. Traps are collected and returned
// together after every instance has been visited.
func (e *Environment) OnTick(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	var errs error
	for _, id := range e.order {
		inst := e.instances[id]
		draw := inst.handle.Function(host.ExportDraw)
		if draw == nil {
			e.logger.Debug("instance has no draw entry point", zap.Stringer("instance", id))
			continue
		}

		_, err := draw.Call(ctx,
			engine.EncodeF32(inst.location.X),
			engine.EncodeF32(inst.location.Y),
			engine.EncodeF32(inst.rotation))
		if err != nil {
			e.logger.Warn("draw failed",
				zap.Stringer("instance", id),
				zap.String("module", inst.name),
				zap.Error(err))
			errs = multierr.Append(errs, errors.New(errors.PhaseRuntime, errors.KindTrap).
				Path(inst.category, inst.name, id.String()).
				Cause(err).
				Build())
		}
	}
	return errs
}

// SubmitCursorCoords passes a cursor position to the instance's optional
// cursor_coords(x, y) entry point. It is a no-op when the instance does not
// export one.
func (e *Environment) SubmitCursorCoords(ctx context.Context, id uuid.UUID, p megs.Point) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	inst, ok := e.instances[id]
	if !ok {
		return errors.NotFound(errors.PhaseRuntime, "instance", id.String())
	}
	fn := inst.handle.Function(host.ExportCursorCoords)
	if fn == nil {
		return nil
	}
	_, err := fn.Call(ctx, engine.EncodeF32(p.X), engine.EncodeF32(p.Y))
	return err
}

// InstanceSize returns the instance's extent from its width and height
// exports. A missing export counts as zero.
func (e *Environment) InstanceSize(ctx context.Context, id uuid.UUID) (width, height float32, err error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	inst, ok := e.instances[id]
	if !ok {
		return 0, 0, errors.NotFound(errors.PhaseRuntime, "instance", id.String())
	}
	return inst.size(ctx)
}

// InstanceAt hit tests p against every instance's bounds, from location to
// location plus size inclusive. Among overlapping instances the highest Z
// wins, and on equal Z the most recently created.
func (e *Environment) InstanceAt(ctx context.Context, p megs.Point) (Hit, bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	var best Hit
	var found bool
	for _, id := range e.order {
		inst := e.instances[id]
		w, h, err := inst.size(ctx)
		if err != nil {
			return Hit{}, false, err
		}
		loc := inst.location
		if p.X < loc.X || p.X > loc.X+w || p.Y < loc.Y || p.Y > loc.Y+h {
			continue
		}
		if found && best.Offset.Z > loc.Z {
			continue
		}
		best = Hit{
			ID:     id,
			Offset: megs.Point{X: p.X - loc.X, Y: p.Y - loc.Y, Z: loc.Z},
		}
		found = true
	}
	return best, found, nil
}

// MoveInstance sets an instance's location.
func (e *Environment) MoveInstance(id uuid.UUID, p megs.Point) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	inst, ok := e.instances[id]
	if !ok {
		return errors.NotFound(errors.PhaseRuntime, "instance", id.String())
	}
	inst.location = p
	return nil
}

// RotateInstance sets an instance's rotation in degrees.
func (e *Environment) RotateInstance(id uuid.UUID, degrees float32) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	inst, ok := e.instances[id]
	if !ok {
		return errors.NotFound(errors.PhaseRuntime, "instance", id.String())
	}
	inst.rotation = degrees
	return nil
}

// Instance returns a snapshot of one instance.
func (e *Environment) Instance(id uuid.UUID) (InstanceInfo, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	inst, ok := e.instances[id]
	if !ok {
		return InstanceInfo{}, false
	}
	return inst.info(), true
}

// Instances returns snapshots of every live instance in creation order.
func (e *Environment) Instances() []InstanceInfo {
	e.mu.Lock()
	defer e.mu.Unlock()

	out := make([]InstanceInfo, 0, len(e.order))
	for _, id := range e.order {
		out = append(out, e.instances[id].info())
	}
	return out
}

func (i *instance) info() InstanceInfo {
	return InstanceInfo{
		ID:       i.id,
		Category: i.category,
		Module:   i.name,
		Location: i.location,
		Rotation: i.rotation,
	}
}

func (i *instance) size(ctx context.Context) (width, height float32, err error) {
	if width, err = i.callF32(ctx, host.ExportWidth); err != nil {
		return 0, 0, err
	}
	if height, err = i.callF32(ctx, host.ExportHeight); err != nil {
		return 0, 0, err
	}
	return width, height, nil
}

func (i *instance) callF32(ctx context.Context, name string) (float32, error) {
	fn := i.handle.Function(name)
	if fn == nil {
		return 0, nil
	}
	res, err := fn.Call(ctx)
	if err != nil {
		return 0, err
	}
	if len(res) == 0 {
		return 0, nil
	}
	return engine.DecodeF32(res[0]), nil
}
