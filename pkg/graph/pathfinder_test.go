package graph

import (
	"errors"
	"slices"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

// Result order is unspecified; compare as sets.
var unordered = cmpopts.SortSlices(func(a, b Path) bool { return slices.Compare(a, b) < 0 })

func find(t *testing.T, x *Index, from, to string) []Path {
	t.Helper()
	paths, err := NewPathFinder(x).Find(from, to)
	if err != nil {
		t.Fatalf("Find(%s, %s): %v", from, to, err)
	}
	return paths
}

func chain(t *testing.T) *Index {
	x := NewMemoryIndex()
	mustAdd(t, x, "Potato", "Yulik", "Sasha")
	mustAdd(t, x, "Sasha", "Boris", "Potato")
	mustAdd(t, x, "Boris", "Alex", "Sasha")
	return x
}

func TestFindPaths(t *testing.T) {
	tests := []struct {
		name  string
		build func(t *testing.T) *Index
		from  string
		to    string
		want  []Path
	}{
		{
			name:  "same node",
			build: chain,
			from:  "Boris", to: "Boris",
			want: []Path{{"Boris"}},
		},
		{
			name: "unknown same node",
			build: func(t *testing.T) *Index {
				return NewMemoryIndex()
			},
			from: "Nobody", to: "Nobody",
			want: []Path{{"Nobody"}},
		},
		{
			name: "direct edge",
			build: func(t *testing.T) *Index {
				x := NewMemoryIndex()
				mustAdd(t, x, "Potato", "Yulik", "Bulik")
				return x
			},
			from: "Potato", to: "Bulik",
			want: []Path{{"Potato", "Bulik"}},
		},
		{
			name: "direct edge shadows longer paths",
			build: func(t *testing.T) *Index {
				x := NewMemoryIndex()
				mustAdd(t, x, "Potato", "Yulik", "Bulik")
				mustAdd(t, x, "Sasha", "Yulik", "Bulik", "Potato")
				return x
			},
			from: "Potato", to: "Sasha",
			want: []Path{{"Potato", "Sasha"}},
		},
		{
			name: "two common friends",
			build: func(t *testing.T) *Index {
				x := NewMemoryIndex()
				mustAdd(t, x, "Potato", "Yulik", "Bulik")
				mustAdd(t, x, "Sasha", "Yulik", "Bulik")
				return x
			},
			from: "Potato", to: "Sasha",
			want: []Path{
				{"Potato", "Bulik", "Sasha"},
				{"Potato", "Yulik", "Sasha"},
			},
		},
		{
			name: "one common friend",
			build: func(t *testing.T) *Index {
				x := NewMemoryIndex()
				mustAdd(t, x, "Potato", "Yulik", "Bulik")
				mustAdd(t, x, "Sasha", "Yulik")
				return x
			},
			from: "Potato", to: "Sasha",
			want: []Path{{"Potato", "Yulik", "Sasha"}},
		},
		{
			name:  "degree three",
			build: chain,
			from:  "Potato", to: "Alex",
			want: []Path{{"Potato", "Sasha", "Boris", "Alex"}},
		},
		{
			name:  "degree three reversed",
			build: chain,
			from:  "Alex", to: "Potato",
			want: []Path{{"Alex", "Boris", "Sasha", "Potato"}},
		},
		{
			name: "degree four",
			build: func(t *testing.T) *Index {
				x := chain(t)
				mustAdd(t, x, "Alex", "Carl", "Boris")
				return x
			},
			from: "Potato", to: "Carl",
			want: []Path{{"Potato", "Sasha", "Boris", "Alex", "Carl"}},
		},
		{
			name: "beyond four hops",
			build: func(t *testing.T) *Index {
				x := chain(t)
				mustAdd(t, x, "Alex", "Carl", "Boris")
				mustAdd(t, x, "Carl", "Dima", "Alex")
				return x
			},
			from: "Potato", to: "Dima",
			want: []Path{},
		},
		{
			name: "disconnected",
			build: func(t *testing.T) *Index {
				x := NewMemoryIndex()
				mustAdd(t, x, "Potato", "Yulik")
				mustAdd(t, x, "Sasha", "Bulik")
				return x
			},
			from: "Potato", to: "Sasha",
			want: []Path{},
		},
		{
			name: "unknown endpoints",
			build: func(t *testing.T) *Index {
				return NewMemoryIndex()
			},
			from: "Ghost", to: "Phantom",
			want: []Path{},
		},
		{
			name: "revisiting paths are dropped",
			build: func(t *testing.T) *Index {
				x := NewMemoryIndex()
				mustAdd(t, x, "Hub", "Spoke")
				mustAdd(t, x, "Left", "Hub")
				mustAdd(t, x, "Right", "Hub")
				return x
			},
			// Hub -> Spoke -> Hub would otherwise appear as a degree-four path.
			from: "Left", to: "Right",
			want: []Path{{"Left", "Hub", "Right"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := find(t, tt.build(t), tt.from, tt.to)
			if diff := cmp.Diff(tt.want, got, unordered); diff != "" {
				t.Errorf("Find(%s, %s) mismatch (-want +got):\n%s", tt.from, tt.to, diff)
			}
		})
	}
}

func TestFindPathsNeverReturnsDuplicates(t *testing.T) {
	x := chain(t)
	mustAdd(t, x, "Alex", "Carl", "Boris")
	mustAdd(t, x, "Yulik", "Boris", "Potato")
	mustAdd(t, x, "Carl", "Sasha", "Yulik")

	for _, from := range []string{"Potato", "Yulik", "Sasha", "Boris", "Alex", "Carl"} {
		for _, to := range []string{"Potato", "Yulik", "Sasha", "Boris", "Alex", "Carl"} {
			seen := map[string]bool{}
			for _, p := range find(t, x, from, to) {
				if seen[p.String()] {
					t.Errorf("Find(%s, %s) repeats %s", from, to, p)
				}
				seen[p.String()] = true

				if p[0] != from || p[len(p)-1] != to {
					t.Errorf("Find(%s, %s) returned %s with wrong endpoints", from, to, p)
				}
				if p.Degree() > MaxDegree {
					t.Errorf("Find(%s, %s) returned degree %d", from, to, p.Degree())
				}
				for i := 1; i < len(p); i++ {
					hop, _ := x.FullNeighbors(p[i-1])
					if !hop.Contains(p[i]) {
						t.Errorf("%s uses missing edge %s - %s", p, p[i-1], p[i])
					}
				}
			}
		}
	}
}

func TestExpandWithoutOnChainNeighbors(t *testing.T) {
	x := NewMemoryIndex()
	mustAdd(t, x, "Potato", "Yulik", "Sasha")
	mustAdd(t, x, "Sasha", "Yulik", "Bulik")

	r, err := NewPathFinder(x).expand("Potato")
	if err != nil {
		t.Fatal(err)
	}
	if r.targets.Len() != 0 || len(r.witnesses) != 0 {
		t.Errorf("expected empty frontier, got %v", r.witnesses)
	}
}

func TestExpandRecordsWitnesses(t *testing.T) {
	x := chain(t)

	r, err := NewPathFinder(x).expand("Potato")
	if err != nil {
		t.Fatal(err)
	}
	want := map[string][]string{"Boris": {"Sasha"}}
	if diff := cmp.Diff(want, r.witnesses); diff != "" {
		t.Errorf("witnesses mismatch (-want +got):\n%s", diff)
	}
}

type failingReader struct {
	*Index
	fail string
}

var errBackend = errors.New("backend unavailable")

func (r failingReader) FullNeighbors(name string) (*NameSet, error) {
	if name == r.fail {
		return nil, errBackend
	}
	return r.Index.FullNeighbors(name)
}

func TestFindPropagatesReaderErrors(t *testing.T) {
	x := chain(t)

	for _, fail := range []string{"Potato", "Alex", "Sasha"} {
		_, err := NewPathFinder(failingReader{Index: x, fail: fail}).Find("Potato", "Alex")
		if !errors.Is(err, errBackend) {
			t.Errorf("fail on %s: err = %v, want errBackend", fail, err)
		}
	}
}

func TestPathString(t *testing.T) {
	p := Path{"Potato", "Sasha", "Boris"}
	if p.String() != "Potato -> Sasha -> Boris" {
		t.Errorf("String = %q", p.String())
	}
	if p.Degree() != 2 {
		t.Errorf("Degree = %d", p.Degree())
	}
	if (Path{}).Degree() != -1 {
		t.Error("empty path degree should be -1")
	}
}
