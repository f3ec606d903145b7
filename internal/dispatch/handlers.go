package dispatch

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/distribution/reference"
	"github.com/ryanmoran/dockertask/internal/format"
)

func (d *Dispatcher) run(ctx context.Context, engine Engine, inv Invocation) (Outcome, error) {
	if inv.Image == "" {
		return Outcome{}, invalid("run requires an image")
	}
	if len(inv.Cmd) == 0 {
		return Outcome{}, invalid("run requires a cmd")
	}

	status, err := engine.RunContainer(ctx, inv.Image, inv.Cmd, d.output(inv), inv.createOptions())
	if err != nil {
		return Outcome{}, err
	}

	d.writer.Printf("Container exited with status: %d\n", status)
	return Outcome{}, nil
}

func (d *Dispatcher) pull(ctx context.Context, engine Engine, inv Invocation) (Outcome, error) {
	if inv.RepoTag == "" {
		return Outcome{}, invalid("pull requires a repoTag")
	}

	named, err := reference.ParseNormalizedNamed(inv.RepoTag)
	if err != nil {
		return Outcome{}, invalid("pull repoTag %q is not a valid image reference: %v", inv.RepoTag, err)
	}
	named = reference.TagNameOnly(named)
	label := "Pulling " + reference.FamiliarString(named)

	body, err := engine.PullImage(ctx, named.String(), inv.Options)
	if err != nil {
		return Outcome{}, err
	}

	return Outcome{Stream: body, Label: label}, nil
}

func (d *Dispatcher) push(ctx context.Context, engine Engine, inv Invocation) (Outcome, error) {
	if inv.Name == "" {
		return Outcome{}, invalid("push requires a name")
	}
	if _, err := reference.ParseNormalizedNamed(inv.Name); err != nil {
		return Outcome{}, invalid("push name %q is not a valid image reference: %v", inv.Name, err)
	}

	body, err := engine.PushImage(ctx, inv.Name, inv.Options, inv.Auth)
	if err != nil {
		return Outcome{}, err
	}

	return Outcome{Stream: body, Label: "Pushing " + inv.Name}, nil
}

func (d *Dispatcher) build(ctx context.Context, engine Engine, inv Invocation) (Outcome, error) {
	if inv.Context == "" {
		return Outcome{}, invalid("build requires a context")
	}
	if len(inv.Files) == 0 {
		return Outcome{}, invalid("build requires src files")
	}

	label := "Building " + buildTarget(inv)

	archive, err := d.archive(inv.Context, inv.Files)
	if err != nil {
		return Outcome{}, invalid("%v", err)
	}

	body, err := engine.BuildImage(ctx, archive, inv.Options)
	if err != nil {
		archive.Close()
		return Outcome{}, err
	}

	return Outcome{Stream: &closeBoth{ReadCloser: body, other: archive}, Label: label}, nil
}

func buildTarget(inv Invocation) string {
	value, ok := inv.Options.Lookup("t")
	if !ok {
		return "docker image"
	}
	switch t := value.(type) {
	case string:
		if t != "" {
			return t
		}
	case []any:
		if len(t) > 0 {
			return fmt.Sprint(t[0])
		}
	case []string:
		if len(t) > 0 {
			return t[0]
		}
	}
	return "docker image"
}

func (d *Dispatcher) tag(ctx context.Context, engine Engine, inv Invocation) (Outcome, error) {
	repo := inv.Options.String("repo")
	tag := inv.Options.String("tag")
	if inv.Name == "" || repo == "" || tag == "" {
		return Outcome{}, invalid("tag requires a name and repo and tag options")
	}

	repoTag := repo + ":" + tag
	named, err := reference.ParseNormalizedNamed(repoTag)
	if err != nil {
		return Outcome{}, invalid("tag target %q is not a valid image reference: %v", repoTag, err)
	}
	if _, ok := named.(reference.NamedTagged); !ok {
		return Outcome{}, invalid("tag target %q has no tag", repoTag)
	}

	if err := engine.TagImage(ctx, inv.Name, reference.FamiliarString(named)); err != nil {
		return Outcome{}, err
	}

	d.writer.Successf("Tagging %s: success!", repoTag)
	return Outcome{}, nil
}

func (d *Dispatcher) ps(ctx context.Context, engine Engine, inv Invocation) (Outcome, error) {
	if err := format.CheckStyle(inv.ColumnOptions.Style); err != nil {
		return Outcome{}, invalid("%v", err)
	}

	records, err := engine.ListContainers(ctx, inv.Options)
	if err != nil {
		return Outcome{}, err
	}

	columns := format.DefaultColumns
	if len(inv.Columns) > 0 {
		records = Project(records, inv.Columns)
		columns = ColumnNames(inv.Columns)
	}

	if err := format.RenderTable(d.output(inv), columns, records, inv.ColumnOptions); err != nil {
		return Outcome{}, fmt.Errorf("failed to render container list: %w", err)
	}

	return Outcome{}, nil
}

func (d *Dispatcher) createContainer(ctx context.Context, engine Engine, inv Invocation) (Outcome, error) {
	if len(inv.Options) == 0 {
		return Outcome{}, invalid("create-container requires create options")
	}

	id, err := engine.CreateContainer(ctx, inv.createOptions())
	if err != nil {
		return Outcome{}, err
	}

	if _, err := engine.StartContainer(ctx, id, nil); err != nil {
		return Outcome{}, err
	}

	d.writer.Successf("Started container %s", shortID(id))
	return Outcome{}, nil
}

// closeBoth closes a response body together with the request body that
// produced it.
type closeBoth struct {
	io.ReadCloser
	other io.Closer
}

func (c *closeBoth) Close() error {
	return errors.Join(c.ReadCloser.Close(), c.other.Close())
}
