package workspace_test

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/Yamashou/gqlblock/assemble"
	"github.com/Yamashou/gqlblock/check"
	"github.com/Yamashou/gqlblock/registry"
	"github.com/Yamashou/gqlblock/workspace"
)

const local = "file://../testdata/schema/schema.graphql"

func setup(t *testing.T) (*registry.Registry, *check.Checker) {
	t.Helper()

	r, err := registry.New(registry.DefaultFetcher{})
	if err != nil {
		t.Fatalf("registry.New() error = %v", err)
	}
	if err := r.Register(context.Background(), "local", local, ""); err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	r.Wait()

	if _, ok := r.Schema(local); !ok {
		t.Fatal("schema not loaded")
	}

	return r, check.New(r)
}

func TestLoad(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		file    string
		wantErr string
	}{
		{name: "存在しないファイル", file: "testdata/nope.yml", wantErr: "unable to read workspace"},
		{name: "名前の重複", file: "testdata/duplicated.yml", wantErr: `query "a": duplicated name`},
		{name: "インスタンスがない", file: "testdata/no_instance.yml", wantErr: `query "a": 'instance' is required`},
		{name: "不明なキー", file: "testdata/unknown.yml", wantErr: `unknown field "extra"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := workspace.Load(tt.file)
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Load() error = %v, want %q", err, tt.wantErr)
			}
		})
	}
}

func TestQuery_Restore(t *testing.T) {
	t.Parallel()

	w, err := workspace.Load("testdata/workspace.yml")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	r, c := setup(t)

	t.Run("保存したツリーを復元して組み立てる", func(t *testing.T) {
		t.Parallel()

		q, ok := w.Query("post")
		if !ok {
			t.Fatal("post not found")
		}

		slot, err := q.Restore(r, c)
		if err != nil {
			t.Fatalf("Restore() error = %v", err)
		}

		if got, want := assemble.Operation(slot), "query { post(id: 1) { title } }"; got != want {
			t.Errorf("Operation() = %q, want %q", got, want)
		}

		if diff := cmp.Diff(q, workspace.Capture("post", slot)); diff != "" {
			t.Errorf("diff(-want +got): %s", diff)
		}
	})

	t.Run("不正な接続はエラーになる", func(t *testing.T) {
		t.Parallel()

		q, _ := w.Query("animals")
		slot, err := q.Restore(r, c)
		if !errors.Is(err, check.ErrMalformedAttachment) {
			t.Fatalf("Restore() error = %v, want ErrMalformedAttachment", err)
		}
		if !strings.Contains(err.Error(), "Dog.barks") {
			t.Errorf("error = %v, want it to name Dog.barks", err)
		}
		if slot == nil || len(slot.Nodes()) != 1 {
			t.Error("the restored tree is returned along with the error")
		}
	})
}

func TestWorkspace_Save(t *testing.T) {
	t.Parallel()

	w, err := workspace.Load("testdata/workspace.yml")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	filename := filepath.Join(t.TempDir(), "saved.yml")
	if err := w.Save(filename); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	got, err := workspace.Load(filename)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if diff := cmp.Diff(w, got); diff != "" {
		t.Errorf("diff(-want +got): %s", diff)
	}
}
