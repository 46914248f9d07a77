package check_test

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/Yamashou/gqlblock/check"
	"github.com/Yamashou/gqlblock/node"
	"github.com/Yamashou/gqlblock/node/nodetest"
	"github.com/Yamashou/gqlblock/schema"
	"github.com/Yamashou/gqlblock/schema/schematest"
	"github.com/Yamashou/gqlblock/template"
)

const (
	endpoint = "https://example.com/graphql"
	other    = "https://other.example.com/graphql"
)

func loaded(t *testing.T) *nodetest.Source {
	t.Helper()

	return &nodetest.Source{
		Schemas:   map[string]*schema.Schema{endpoint: schematest.Load(t)},
		Instances: map[string]string{"main": endpoint, "other": other},
	}
}

func unloaded() *nodetest.Source {
	return &nodetest.Source{
		Instances: map[string]string{"main": endpoint},
	}
}

// build creates the tree and resyncs every node against src.
func build(t *testing.T, src node.SchemaSource, tmpl *template.Template) *node.Node {
	t.Helper()

	n := node.Build(tmpl)
	node.Walk(n, func(n *node.Node) {
		_ = n.Resync(src)
	})

	return n
}

func field(endpoint, parent, name string, hasChildren bool) *template.Template {
	return &template.Template{Kind: template.KindField, Endpoint: endpoint, Parent: parent, Name: name, HasChildren: hasChildren}
}

func fragment(name string) *template.Template {
	return &template.Template{Kind: template.KindField, Endpoint: endpoint, Name: name, HasChildren: true}
}

func pair(base, key string) *template.Template {
	return &template.Template{
		Kind: template.KindPair, Endpoint: endpoint, BaseType: base,
		Key: &template.Template{Kind: template.KindEnum, Endpoint: endpoint, BaseType: base, EnumValue: key},
	}
}

func TestRuleFor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		kind template.Kind
		slot node.SlotKind
		want check.Rule
	}{
		{kind: template.KindField, slot: node.SlotRoot, want: check.RuleRoot},
		{kind: template.KindField, slot: node.SlotSelection, want: check.RuleSelection},
		{kind: template.KindField, slot: node.SlotGeneric, want: check.RulePlain},
		{kind: template.KindField, slot: node.SlotArguments, want: check.RulePlain},
		{kind: template.KindEnum, slot: node.SlotPairKey, want: check.RuleEnumKey},
		{kind: template.KindEnum, slot: node.SlotPairValue, want: check.RuleEnumValue},
		{kind: template.KindDict, slot: node.SlotArguments, want: check.RuleArguments},
		{kind: template.KindDict, slot: node.SlotPairValue, want: check.RuleDictValue},
		{kind: template.KindList, slot: node.SlotPairValue, want: check.RuleListValue},
		{kind: template.KindPair, slot: node.SlotDictItem, want: check.RulePair},
		{kind: template.KindPair, slot: node.SlotSelection, want: check.RuleReject},
		{kind: template.KindText, slot: node.SlotPairValue, want: check.RulePlain},
		{kind: template.KindNull, slot: node.SlotListItem, want: check.RulePlain},
	}

	for _, tt := range tests {
		t.Run(string(tt.kind)+" to "+tt.slot.String(), func(t *testing.T) {
			t.Parallel()

			if got := check.RuleFor(tt.kind, tt.slot); got != tt.want {
				t.Errorf("RuleFor() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestChecker_MayAttach_Root(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		src  func(t *testing.T) *nodetest.Source
		tmpl *template.Template
		slot *node.Slot
		want bool
	}{
		{
			name: "ルートのqueryフィールド",
			src:  loaded,
			tmpl: field(endpoint, schema.RootTypeName, "query", true),
			slot: node.NewRootSlot("main"),
			want: true,
		},
		{
			name: "クエリ型のフィールドは省略記法として受け入れる",
			src:  loaded,
			tmpl: field(endpoint, "Query", "user", true),
			slot: node.NewRootSlot("main"),
			want: true,
		},
		{
			name: "解決後は存在しないフィールドを拒否する",
			src:  loaded,
			tmpl: field(endpoint, "Query", "missingField", false),
			slot: node.NewRootSlot("main"),
			want: false,
		},
		{
			name: "解決前は存在しないフィールドも仮に受け入れる",
			src:  func(*testing.T) *nodetest.Source { return unloaded() },
			tmpl: field(endpoint, "Query", "missingField", false),
			slot: node.NewRootSlot("main"),
			want: true,
		},
		{
			name: "別のエンドポイントのインスタンス",
			src:  loaded,
			tmpl: field(endpoint, schema.RootTypeName, "query", true),
			slot: node.NewRootSlot("other"),
			want: false,
		},
		{
			name: "未登録のインスタンス",
			src:  loaded,
			tmpl: field(endpoint, schema.RootTypeName, "query", true),
			slot: node.NewRootSlot("unknown"),
			want: false,
		},
		{
			name: "ミューテーション型のフィールドは省略できない",
			src:  loaded,
			tmpl: field(endpoint, "Mutation", "createPost", true),
			slot: node.NewRootSlot("main"),
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			src := tt.src(t)
			n := build(t, src, tt.tmpl)
			if got := check.New(src).MayAttach(n, tt.slot); got != tt.want {
				t.Errorf("MayAttach() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestChecker_MayAttach_Selection(t *testing.T) {
	t.Parallel()

	src := loaded(t)
	c := check.New(src)

	animals := build(t, src, field(endpoint, "Query", "animals", true))
	user := build(t, src, field(endpoint, "Query", "user", true))
	cat := build(t, src, fragment("Cat"))

	tests := []struct {
		name  string
		child *template.Template
		slot  *node.Slot
		want  bool
	}{
		{
			name:  "Animalの下にDogのフラグメント",
			child: fragment("Dog"),
			slot:  animals.Selection,
			want:  true,
		},
		{
			name:  "Animalの下にAnimal自身のフラグメント",
			child: fragment("Animal"),
			slot:  animals.Selection,
			want:  true,
		},
		{
			name:  "Catの下にDogのフラグメント",
			child: fragment("Dog"),
			slot:  cat.Selection,
			want:  false,
		},
		{
			name:  "Userの下にPostのフラグメント",
			child: fragment("Post"),
			slot:  user.Selection,
			want:  false,
		},
		{
			name:  "親の型が一致するフィールド",
			child: field(endpoint, "User", "name", false),
			slot:  user.Selection,
			want:  true,
		},
		{
			name:  "親の型が異なるフィールド",
			child: field(endpoint, "Post", "title", false),
			slot:  user.Selection,
			want:  false,
		},
		{
			name:  "インターフェースのフィールド",
			child: field(endpoint, "Animal", "name", false),
			slot:  animals.Selection,
			want:  true,
		},
		{
			name:  "フラグメント内のフィールド",
			child: field(endpoint, "Cat", "meows", false),
			slot:  cat.Selection,
			want:  true,
		},
		{
			name:  "エンドポイントが異なる",
			child: field(other, "User", "name", false),
			slot:  user.Selection,
			want:  false,
		},
		{
			name:  "辞書だけを受け入れるスロット",
			child: field(endpoint, "User", "name", false),
			slot:  node.NewSlot(node.TagDict),
			want:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			child := build(t, src, tt.child)
			if got := c.MayAttach(child, tt.slot); got != tt.want {
				t.Errorf("MayAttach() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestChecker_MayAttach_Unresolved(t *testing.T) {
	t.Parallel()

	// the selection owner resolved against a schema that is gone now
	src := loaded(t)
	user := build(t, src, field(endpoint, "Query", "user", true))
	child := build(t, src, field(endpoint, "User", "name", false))

	empty := unloaded()
	if check.New(empty).MayAttach(child, user.Selection) {
		t.Error("a field must not attach while the schema is missing")
	}

	n := build(t, empty, field(endpoint, "User", "name", false))
	if check.New(src).MayAttach(n, user.Selection) {
		t.Error("an unresolved field must not attach")
	}
}

func TestChecker_MayAttach_Broken(t *testing.T) {
	t.Parallel()

	src := loaded(t)
	user := build(t, src, field(endpoint, "Query", "user", true))

	gone := build(t, src, field(endpoint, "User", "email", false))
	if !gone.Broken() {
		t.Fatal("User.email must be broken")
	}
	if check.New(src).MayAttach(gone, user.Selection) {
		t.Error("a broken node must never attach")
	}
	if check.New(src).MayAttach(gone, node.NewSlot()) {
		t.Error("a broken node must not attach to a generic slot either")
	}
}

func TestChecker_Attach_PairKey(t *testing.T) {
	t.Parallel()

	src := loaded(t)
	c := check.New(src)

	user := build(t, src, &template.Template{
		Kind: template.KindField, Endpoint: endpoint, Parent: "Query", Name: "user",
		HasChildren: true, HasArguments: true,
	})
	dict := build(t, src, &template.Template{Kind: template.KindDict, Endpoint: endpoint, BaseType: "Query.user"})
	if err := c.Attach(dict, user.Arguments); err != nil {
		t.Fatalf("Attach(dict) error = %v", err)
	}

	p := build(t, src, &template.Template{Kind: template.KindPair, Endpoint: endpoint, BaseType: "Query.user"})
	if err := c.Attach(p, dict.Items); err != nil {
		t.Fatalf("Attach(pair) error = %v", err)
	}
	if p.Value.Check != nil {
		t.Errorf("value check = %v before a key is chosen, want nil", p.Value.Check)
	}

	key := build(t, src, &template.Template{Kind: template.KindEnum, Endpoint: endpoint, BaseType: "Query.user", EnumValue: "id"})
	if err := c.Attach(key, p.Key); err != nil {
		t.Fatalf("Attach(key) error = %v", err)
	}

	if diff := cmp.Diff([]string{node.TagString}, p.Value.Check); diff != "" {
		t.Errorf("value check diff(-want +got): %s", diff)
	}
	if !p.Quote {
		t.Error("an ID value must be quoted")
	}

	text := build(t, src, &template.Template{Kind: template.KindText, Text: "42"})
	if err := c.Attach(text, p.Value); err != nil {
		t.Errorf("Attach(text) error = %v", err)
	}

	number := build(t, src, &template.Template{Kind: template.KindNumber, Text: "42"})
	if err := c.Attach(number, p.Value); !errors.Is(err, check.ErrMalformedAttachment) {
		t.Errorf("Attach(number) error = %v, want ErrMalformedAttachment", err)
	}
}

func TestChecker_SetEnumValue(t *testing.T) {
	t.Parallel()

	src := loaded(t)
	c := check.New(src)

	p := build(t, src, pair("PostFilter", "tags"))
	if diff := cmp.Diff([]string{node.TagList, node.TagNull}, p.Value.Check); diff != "" {
		t.Errorf("check diff(-want +got): %s", diff)
	}

	if err := c.SetEnumValue(p.Key.Node(), "minRating"); err != nil {
		t.Fatalf("SetEnumValue() error = %v", err)
	}
	if diff := cmp.Diff([]string{node.TagNumber, node.TagNull}, p.Value.Check); diff != "" {
		t.Errorf("check diff(-want +got): %s", diff)
	}
	if p.Value.ValueType != "Float" {
		t.Errorf("ValueType = %q, want Float", p.Value.ValueType)
	}

	if err := c.SetEnumValue(p.Key.Node(), "nope"); err == nil {
		t.Error("an unknown choice must be refused")
	}
	if got := p.Key.Node().EnumValue; got != "minRating" {
		t.Errorf("EnumValue = %q after a refused change, want minRating", got)
	}
}

func TestChecker_MayAttach_Values(t *testing.T) {
	t.Parallel()

	src := loaded(t)
	c := check.New(src)

	filter := build(t, src, pair("Query.search", "filter"))
	tags := build(t, src, pair("PostFilter", "tags"))
	status := build(t, src, pair("PostFilter", "status"))
	author := build(t, src, pair("PostFilter", "author"))
	args := build(t, src, &template.Template{
		Kind: template.KindField, Endpoint: endpoint, Parent: "Query", Name: "post",
		HasChildren: true, HasArguments: true,
	})
	input := build(t, src, &template.Template{Kind: template.KindDict, Endpoint: endpoint, BaseType: "PostFilter"})
	statusList := build(t, src, &template.Template{Kind: template.KindList, Endpoint: endpoint, Type: "Status!"})

	tests := []struct {
		name  string
		child *template.Template
		slot  *node.Slot
		want  bool
	}{
		{
			name:  "引数辞書は匿名入力型と一致する",
			child: &template.Template{Kind: template.KindDict, Endpoint: endpoint, BaseType: "Query.post"},
			slot:  args.Arguments,
			want:  true,
		},
		{
			name:  "別のフィールドの引数辞書",
			child: &template.Template{Kind: template.KindDict, Endpoint: endpoint, BaseType: "Query.user"},
			slot:  args.Arguments,
			want:  false,
		},
		{
			name:  "キーの型と一致する入力辞書",
			child: &template.Template{Kind: template.KindDict, Endpoint: endpoint, BaseType: "PostFilter"},
			slot:  filter.Value,
			want:  true,
		},
		{
			name:  "キーの型と異なる入力辞書",
			child: &template.Template{Kind: template.KindDict, Endpoint: endpoint, BaseType: "AuthorFilter"},
			slot:  filter.Value,
			want:  false,
		},
		{
			name:  "ネストした入力辞書",
			child: &template.Template{Kind: template.KindDict, Endpoint: endpoint, BaseType: "AuthorFilter"},
			slot:  author.Value,
			want:  true,
		},
		{
			name:  "要素型が一致するリスト",
			child: &template.Template{Kind: template.KindList, Endpoint: endpoint, Type: "String!"},
			slot:  tags.Value,
			want:  true,
		},
		{
			name:  "要素型のnull許容は区別しない",
			child: &template.Template{Kind: template.KindList, Endpoint: endpoint, Type: "String"},
			slot:  tags.Value,
			want:  true,
		},
		{
			name:  "要素型が異なるリスト",
			child: &template.Template{Kind: template.KindList, Endpoint: endpoint, Type: "Int"},
			slot:  tags.Value,
			want:  false,
		},
		{
			name:  "リストでない値にリスト",
			child: &template.Template{Kind: template.KindList, Endpoint: endpoint, Type: "Status"},
			slot:  status.Value,
			want:  false,
		},
		{
			name:  "列挙値はキーの型と一致する",
			child: &template.Template{Kind: template.KindEnum, Endpoint: endpoint, BaseType: "Status", EnumValue: "DRAFT"},
			slot:  status.Value,
			want:  true,
		},
		{
			name:  "nullableな値にnull",
			child: &template.Template{Kind: template.KindNull},
			slot:  status.Value,
			want:  true,
		},
		{
			name:  "nullableなリストの値にnull",
			child: &template.Template{Kind: template.KindNull},
			slot:  tags.Value,
			want:  true,
		},
		{
			name:  "リストの要素に列挙値",
			child: &template.Template{Kind: template.KindEnum, Endpoint: endpoint, BaseType: "Status", EnumValue: "PUBLISHED"},
			slot:  statusList.Items,
			want:  true,
		},
		{
			name:  "non-nullなリストの要素にnull",
			child: &template.Template{Kind: template.KindNull},
			slot:  statusList.Items,
			want:  false,
		},
		{
			name:  "同じ入力型のペア",
			child: pair("PostFilter", "status"),
			slot:  input.Items,
			want:  true,
		},
		{
			name:  "別の入力型のペア",
			child: pair("AuthorFilter", "name"),
			slot:  input.Items,
			want:  false,
		},
		{
			name:  "ペアはペアのキーにならない",
			child: pair("PostFilter", "status"),
			slot:  status.Key,
			want:  false,
		},
		{
			name:  "キーの列挙は常に受け入れる",
			child: &template.Template{Kind: template.KindEnum, Endpoint: endpoint, BaseType: "PostFilter", EnumValue: "tags"},
			slot:  status.Key,
			want:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			child := build(t, src, tt.child)
			if got := c.MayAttach(child, tt.slot); got != tt.want {
				t.Errorf("MayAttach() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestChecker_MayAttach_UnconfiguredValue(t *testing.T) {
	t.Parallel()

	src := loaded(t)
	c := check.New(src)

	keyless := build(t, src, &template.Template{Kind: template.KindPair, Endpoint: endpoint, BaseType: "Query.user"})
	unknownKey := build(t, src, pair("Query.user", "nope"))
	if !unknownKey.Broken() {
		t.Error("a pair keyed by an unknown input field must be broken")
	}

	list := build(t, src, &template.Template{Kind: template.KindList, Endpoint: endpoint, Type: "Status!"})
	evicted := unloaded()
	if err := list.Resync(evicted); err != nil {
		t.Fatalf("Resync() error = %v", err)
	}

	slots := []struct {
		name string
		slot *node.Slot
	}{
		{name: "キーのないペアの値", slot: keyless.Value},
		{name: "未知のキーのペアの値", slot: unknownKey.Value},
		{name: "スキーマが消えたリストの要素", slot: list.Items},
	}
	children := []struct {
		name string
		tmpl *template.Template
	}{
		{name: "フィールド", tmpl: field(endpoint, "Query", "user", true)},
		{name: "テキスト", tmpl: &template.Template{Kind: template.KindText, Text: "1"}},
		{name: "null", tmpl: &template.Template{Kind: template.KindNull}},
		{name: "列挙値", tmpl: &template.Template{Kind: template.KindEnum, Endpoint: endpoint, BaseType: "Status", EnumValue: "DRAFT"}},
	}

	for _, s := range slots {
		for _, ch := range children {
			t.Run(s.name+"に"+ch.name, func(t *testing.T) {
				t.Parallel()

				child := build(t, src, ch.tmpl)
				if c.MayAttach(child, s.slot) {
					t.Error("MayAttach() = true, want false while the value type is unknown")
				}
			})
		}
	}
}

func TestChecker_Validate(t *testing.T) {
	t.Parallel()

	src := loaded(t)
	c := check.New(src)

	root := node.NewRootSlot("main")
	node.Connect(root, build(t, src, &template.Template{
		Kind: template.KindField, Endpoint: endpoint, Parent: schema.RootTypeName, Name: "query", HasChildren: true,
		Items: []*template.Template{
			{
				Kind: template.KindField, Endpoint: endpoint, Parent: "Query", Name: "user",
				HasChildren: true, HasArguments: true,
				Arguments: &template.Template{
					Kind: template.KindDict, Endpoint: endpoint, BaseType: "Query.user",
					Items: []*template.Template{{
						Kind: template.KindPair, Endpoint: endpoint, BaseType: "Query.user", Quote: true,
						Key:   &template.Template{Kind: template.KindEnum, Endpoint: endpoint, BaseType: "Query.user", EnumValue: "id"},
						Value: &template.Template{Kind: template.KindText, Text: "1"},
					}},
				},
				Items: []*template.Template{field(endpoint, "User", "name", false)},
			},
		},
	}))

	if err := c.Validate(root); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}

	// a post field below user is not a field of User
	user := root.Node().Selection.Node()
	node.Connect(user.Selection, build(t, src, field(endpoint, "Post", "title", false)))
	node.Connect(user.Arguments.Node().Items.Node().Value, build(t, src, &template.Template{Kind: template.KindBoolean, Text: "true"}))

	err := c.Validate(root)
	if !errors.Is(err, check.ErrMalformedAttachment) {
		t.Fatalf("Validate() error = %v, want ErrMalformedAttachment", err)
	}

	var joined interface{ Unwrap() []error }
	if !errors.As(err, &joined) {
		t.Fatalf("error = %T, want a joined error", err)
	}
	if got := countLeaves(err); got != 2 {
		t.Errorf("errors = %d, want 2: %v", got, err)
	}
}

func countLeaves(err error) int {
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		n := 0
		for _, e := range joined.Unwrap() {
			n += countLeaves(e)
		}
		return n
	}

	return 1
}
