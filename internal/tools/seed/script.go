package seed

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/Shopify/go-lua"
	"github.com/ashmont/clientdocs/internal/services/documents/domain"
)

const (
	checklistTypeName = "checklist"
	clientRefTypeName = "checklist_client"
)

// Step kinds produced by checklist scripts.
const (
	stepKindStaff   = "staff"
	stepKindClient  = "client"
	stepKindRequest = "request"
)

// Checklist is a seed plan built by a Lua script: the staff accounts,
// roster clients, and document requests to create.
type Checklist struct {
	Name  string
	Steps []Step
}

// Step is one seeding action.
type Step struct {
	Kind string
	Args map[string]any
}

// clientRef lets a script attach requests to a previously declared client.
type clientRef struct {
	checklist *Checklist
	email     string
}

// LoadChecklistFromFile runs one Lua checklist script and returns its plan.
func LoadChecklistFromFile(path string) (*Checklist, error) {
	state := lua.NewState()
	lua.OpenLibraries(state)

	registerLuaTypes(state)

	if err := lua.LoadFile(state, path, ""); err != nil {
		return nil, fmt.Errorf("load lua: %w", err)
	}
	if err := state.ProtectedCall(0, 1, 0); err != nil {
		return nil, fmt.Errorf("run lua: %w", err)
	}

	if state.TypeOf(-1) != lua.TypeUserData {
		state.Pop(1)
		return nil, fmt.Errorf("checklist script must return Checklist")
	}
	ud := state.ToUserData(-1)
	state.Pop(1)
	checklist, ok := ud.(*Checklist)
	if !ok || checklist == nil {
		return nil, fmt.Errorf("checklist script returned invalid Checklist")
	}
	if strings.TrimSpace(checklist.Name) == "" {
		checklist.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	if err := validateChecklist(checklist); err != nil {
		return nil, err
	}
	return checklist, nil
}

// LoadChecklists loads every checklist matching the glob pattern, in file
// name order.
func LoadChecklists(pattern string) ([]*Checklist, error) {
	paths, err := filepath.Glob(pattern)
	if err != nil {
		return nil, fmt.Errorf("glob checklists: %w", err)
	}
	sort.Strings(paths)

	checklists := make([]*Checklist, 0, len(paths))
	for _, path := range paths {
		checklist, err := LoadChecklistFromFile(path)
		if err != nil {
			return nil, fmt.Errorf("checklist %s: %w", filepath.Base(path), err)
		}
		checklists = append(checklists, checklist)
	}
	return checklists, nil
}

// validateChecklist rejects plans that would fail midway through seeding:
// requests must name a client declared earlier and statuses must parse.
func validateChecklist(checklist *Checklist) error {
	clients := map[string]bool{}
	for i, step := range checklist.Steps {
		switch step.Kind {
		case stepKindClient:
			clients[normalizeEmailKey(stringArg(step.Args, "email"))] = true
		case stepKindRequest:
			email := stringArg(step.Args, "client")
			title := stringArg(step.Args, "title")
			if !clients[normalizeEmailKey(email)] {
				return fmt.Errorf("step %d: request %q references unknown client %q", i+1, title, email)
			}
			if status := stringArg(step.Args, "status"); status != "" {
				if _, err := domain.ParseRequestStatus(status); err != nil {
					return fmt.Errorf("step %d: request %q: invalid status %q", i+1, title, status)
				}
			}
		}
	}
	return nil
}

func stringArg(args map[string]any, key string) string {
	value, _ := args[key].(string)
	return strings.TrimSpace(value)
}

func normalizeEmailKey(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func registerLuaTypes(state *lua.State) {
	registerChecklistType(state)
	registerClientRefType(state)
	registerChecklistConstructor(state)
}

func registerChecklistType(state *lua.State) {
	lua.NewMetaTable(state, checklistTypeName)
	state.NewTable()
	lua.SetFunctions(state, checklistMethods, 0)
	state.SetField(-2, "__index")
	state.Pop(1)
}

func registerClientRefType(state *lua.State) {
	lua.NewMetaTable(state, clientRefTypeName)
	state.NewTable()
	lua.SetFunctions(state, clientRefMethods, 0)
	state.SetField(-2, "__index")
	state.Pop(1)
}

func registerChecklistConstructor(state *lua.State) {
	state.NewTable()
	lua.SetFunctions(state, checklistConstructor, 0)
	state.SetGlobal("Checklist")
}

var checklistConstructor = []lua.RegistryFunction{
	{Name: "new", Function: checklistNew},
}

func checklistNew(state *lua.State) int {
	name := lua.OptString(state, 1, "")
	checklist := &Checklist{Name: name}
	state.PushUserData(checklist)
	lua.SetMetaTableNamed(state, checklistTypeName)
	return 1
}

var checklistMethods = []lua.RegistryFunction{
	{Name: "staff", Function: checklistStaff},
	{Name: "client", Function: checklistClient},
	{Name: "request", Function: checklistRequest},
}

func checklistStaff(state *lua.State) int {
	checklist := checkChecklist(state)
	name := lua.CheckString(state, 2)
	email := lua.CheckString(state, 3)
	appendStep(checklist, stepKindStaff, map[string]any{"name": name, "email": email})
	return 0
}

func checklistClient(state *lua.State) int {
	checklist := checkChecklist(state)
	name := lua.CheckString(state, 2)
	email := lua.CheckString(state, 3)
	args := map[string]any{"name": name, "email": email}
	for key, value := range optionalOpts(state, 4) {
		args[key] = value
	}
	appendStep(checklist, stepKindClient, args)

	state.PushUserData(&clientRef{checklist: checklist, email: email})
	lua.SetMetaTableNamed(state, clientRefTypeName)
	return 1
}

func checklistRequest(state *lua.State) int {
	checklist := checkChecklist(state)
	email := lua.CheckString(state, 2)
	title := lua.CheckString(state, 3)
	appendRequestStep(checklist, email, title, optionalOpts(state, 4))
	return 0
}

var clientRefMethods = []lua.RegistryFunction{
	{Name: "request", Function: clientRefRequest},
}

func clientRefRequest(state *lua.State) int {
	ud := lua.CheckUserData(state, 1, clientRefTypeName)
	ref, ok := ud.(*clientRef)
	if !ok || ref == nil {
		lua.ArgumentError(state, 1, "client expected")
		return 0
	}
	title := lua.CheckString(state, 2)
	appendRequestStep(ref.checklist, ref.email, title, optionalOpts(state, 3))
	return 0
}

func appendRequestStep(checklist *Checklist, email, title string, opts map[string]any) {
	args := map[string]any{"client": email, "title": title}
	for key, value := range opts {
		args[key] = value
	}
	appendStep(checklist, stepKindRequest, args)
}

func checkChecklist(state *lua.State) *Checklist {
	ud := lua.CheckUserData(state, 1, checklistTypeName)
	if checklist, ok := ud.(*Checklist); ok && checklist != nil {
		return checklist
	}
	lua.ArgumentError(state, 1, "checklist expected")
	return nil
}

func appendStep(checklist *Checklist, kind string, args map[string]any) {
	if checklist == nil {
		return
	}
	if args == nil {
		args = map[string]any{}
	}
	checklist.Steps = append(checklist.Steps, Step{Kind: kind, Args: args})
}

// optionalOpts reads a flat options table of scalar values. Nested tables
// are ignored; checklist options are simple key/value pairs.
func optionalOpts(state *lua.State, index int) map[string]any {
	if state.IsNoneOrNil(index) || state.TypeOf(index) != lua.TypeTable {
		return map[string]any{}
	}

	opts := map[string]any{}
	index = state.AbsIndex(index)
	state.PushNil()
	for state.Next(index) {
		if state.TypeOf(-2) == lua.TypeString {
			key, _ := state.ToString(-2)
			switch state.TypeOf(-1) {
			case lua.TypeString:
				value, _ := state.ToString(-1)
				opts[key] = value
			case lua.TypeNumber:
				value, _ := state.ToNumber(-1)
				opts[key] = value
			case lua.TypeBoolean:
				opts[key] = state.ToBoolean(-1)
			}
		}
		state.Pop(1)
	}
	return opts
}
