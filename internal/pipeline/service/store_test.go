package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"
	"sync"
	"time"

	"rivo_backend/internal/pipeline/domain"
	"rivo_backend/internal/pipeline/ports"
	"rivo_backend/platform/apperr"
)

// memStore is an in-memory ports.Store. Units of work run serially against a
// copy of the state that replaces it only on success.
type memStore struct {
	txMu  sync.Mutex
	mu    sync.RWMutex
	state *memState
	// fail makes the named Tx method return the error.
	fail map[string]error
}

type memState struct {
	seq           int64
	caseCounter   int64
	leads         map[int64]domain.Lead
	clients       map[int64]domain.Client
	cases         map[int64]domain.Case
	attachments   map[string]map[int64]domain.Attachment
	leadChanges   []domain.LeadStatusChange
	clientChanges []domain.ClientStatusChange
	caseChanges   []domain.CaseStageChange
	callLogs      []domain.CallLog
	notes         []domain.Note
	touched       map[domain.EntityRef]int
	bankProducts  map[int64]bool
}

func newMemStore() *memStore {
	return &memStore{
		fail: map[string]error{},
		state: &memState{
			leads:        map[int64]domain.Lead{},
			clients:      map[int64]domain.Client{},
			cases:        map[int64]domain.Case{},
			attachments:  map[string]map[int64]domain.Attachment{},
			touched:      map[domain.EntityRef]int{},
			bankProducts: map[int64]bool{1: true, 2: true, 3: true, 4: true, 5: true},
		},
	}
}

func (s *memState) clone() *memState {
	out := *s
	out.leads = maps.Clone(s.leads)
	out.clients = maps.Clone(s.clients)
	out.cases = maps.Clone(s.cases)
	out.attachments = make(map[string]map[int64]domain.Attachment, len(s.attachments))
	for k, v := range s.attachments {
		out.attachments[k] = maps.Clone(v)
	}
	out.leadChanges = slices.Clone(s.leadChanges)
	out.clientChanges = slices.Clone(s.clientChanges)
	out.caseChanges = slices.Clone(s.caseChanges)
	out.callLogs = slices.Clone(s.callLogs)
	out.notes = slices.Clone(s.notes)
	out.touched = maps.Clone(s.touched)
	return &out
}

func (s *memState) nextID() int64 {
	s.seq++
	return s.seq
}

func (m *memStore) snapshot() *memState {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

func (m *memStore) WithinTx(ctx context.Context, fn func(tx ports.Tx) error) error {
	m.txMu.Lock()
	defer m.txMu.Unlock()

	draft := m.snapshot().clone()
	if err := fn(&memTx{st: draft, fail: m.fail}); err != nil {
		return err
	}
	m.mu.Lock()
	m.state = draft
	m.mu.Unlock()
	return nil
}

func (m *memStore) GetLead(_ context.Context, id int64) (domain.Lead, error) {
	l, ok := m.snapshot().leads[id]
	if !ok {
		return domain.Lead{}, apperr.NotFound("lead not found")
	}
	return l, nil
}

func (m *memStore) ListLeads(_ context.Context, f ports.LeadFilter) ([]domain.Lead, int, error) {
	var out []domain.Lead
	for _, l := range sortedValues(m.snapshot().leads) {
		if f.Status != nil && l.Status != *f.Status {
			continue
		}
		if f.Search != "" && !strings.Contains(strings.ToLower(l.FirstName+" "+l.LastName), strings.ToLower(f.Search)) {
			continue
		}
		out = append(out, l)
	}
	return paginate(out, f.Page), len(out), nil
}

func (m *memStore) ConvertedClientID(_ context.Context, leadID int64) (*int64, error) {
	for _, c := range m.snapshot().clients {
		if c.ConvertedFromLeadID != nil && *c.ConvertedFromLeadID == leadID {
			id := c.ID
			return &id, nil
		}
	}
	return nil, nil
}

func (m *memStore) GetClient(_ context.Context, id int64) (domain.Client, error) {
	c, ok := m.snapshot().clients[id]
	if !ok {
		return domain.Client{}, apperr.NotFound("client not found")
	}
	return c, nil
}

func (m *memStore) ListClients(_ context.Context, f ports.ClientFilter) ([]domain.Client, int, error) {
	var out []domain.Client
	for _, c := range sortedValues(m.snapshot().clients) {
		if f.Status != nil && c.Status != *f.Status {
			continue
		}
		if f.Eligibility != nil && c.EligibilityStatus != *f.Eligibility {
			continue
		}
		out = append(out, c)
	}
	return paginate(out, f.Page), len(out), nil
}

func (m *memStore) GetCase(_ context.Context, id int64) (domain.Case, error) {
	c, ok := m.snapshot().cases[id]
	if !ok {
		return domain.Case{}, apperr.NotFound("case not found")
	}
	return c, nil
}

func (m *memStore) ListCases(_ context.Context, f ports.CaseFilter) ([]domain.Case, int, error) {
	var out []domain.Case
	for _, c := range sortedValues(m.snapshot().cases) {
		if f.Stage != nil && c.Stage != *f.Stage {
			continue
		}
		if f.Terminal != nil && c.Stage.IsTerminal() != *f.Terminal {
			continue
		}
		if f.ClientID != nil && c.ClientID != *f.ClientID {
			continue
		}
		out = append(out, c)
	}
	return paginate(out, f.Page), len(out), nil
}

func (m *memStore) ListClientCases(_ context.Context, clientID int64) ([]domain.Case, error) {
	var out []domain.Case
	for _, c := range sortedValues(m.snapshot().cases) {
		if c.ClientID == clientID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *memStore) ListAttachments(_ context.Context, kind domain.AttachmentKind, ownerID int64) ([]domain.Attachment, error) {
	var out []domain.Attachment
	for _, a := range sortedValues(m.snapshot().attachments[kind.Name]) {
		if a.OwnerID == ownerID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (m *memStore) ListLeadChanges(_ context.Context, leadID int64) ([]domain.LeadStatusChange, error) {
	return filter(m.snapshot().leadChanges, func(c domain.LeadStatusChange) bool { return c.LeadID == leadID }), nil
}

func (m *memStore) ListClientChanges(_ context.Context, clientID int64) ([]domain.ClientStatusChange, error) {
	return filter(m.snapshot().clientChanges, func(c domain.ClientStatusChange) bool { return c.ClientID == clientID }), nil
}

func (m *memStore) ListCaseChanges(_ context.Context, caseID int64) ([]domain.CaseStageChange, error) {
	return filter(m.snapshot().caseChanges, func(c domain.CaseStageChange) bool { return c.CaseID == caseID }), nil
}

func (m *memStore) ListCallLogs(_ context.Context, ref domain.EntityRef) ([]domain.CallLog, error) {
	return filter(m.snapshot().callLogs, func(l domain.CallLog) bool { return l.Entity == ref }), nil
}

func (m *memStore) ListNotes(_ context.Context, ref domain.EntityRef) ([]domain.Note, error) {
	return filter(m.snapshot().notes, func(n domain.Note) bool { return n.Entity == ref }), nil
}

type memTx struct {
	st   *memState
	fail map[string]error
}

func (t *memTx) check(op string) error {
	return t.fail[op]
}

func (t *memTx) LockLead(_ context.Context, id int64) (domain.Lead, error) {
	l, ok := t.st.leads[id]
	if !ok {
		return domain.Lead{}, apperr.NotFound("lead not found")
	}
	return l, nil
}

func (t *memTx) LockClient(_ context.Context, id int64) (domain.Client, error) {
	if err := t.check("LockClient"); err != nil {
		return domain.Client{}, err
	}
	c, ok := t.st.clients[id]
	if !ok {
		return domain.Client{}, apperr.NotFound("client not found")
	}
	return c, nil
}

func (t *memTx) LockCase(_ context.Context, id int64) (domain.Case, error) {
	if err := t.check("LockCase"); err != nil {
		return domain.Case{}, err
	}
	c, ok := t.st.cases[id]
	if !ok {
		return domain.Case{}, apperr.NotFound("case not found")
	}
	return c, nil
}

func (t *memTx) LockEntity(ctx context.Context, ref domain.EntityRef) error {
	var err error
	switch ref.Kind {
	case domain.EntityLead:
		_, err = t.LockLead(ctx, ref.ID)
	case domain.EntityClient:
		_, err = t.LockClient(ctx, ref.ID)
	case domain.EntityCase:
		_, err = t.LockCase(ctx, ref.ID)
	default:
		err = apperr.Validation("unknown entity kind")
	}
	return err
}

func (t *memTx) Touch(_ context.Context, ref domain.EntityRef) error {
	if err := t.check("Touch"); err != nil {
		return err
	}
	t.st.touched[ref]++
	return nil
}

func (t *memTx) CreateLead(_ context.Context, l *domain.Lead) error {
	l.ID = t.st.nextID()
	l.CreatedAt, l.UpdatedAt = time.Now(), time.Now()
	t.st.leads[l.ID] = *l
	return nil
}

func (t *memTx) SaveLead(_ context.Context, l *domain.Lead) error {
	if err := t.check("SaveLead"); err != nil {
		return err
	}
	l.UpdatedAt = time.Now()
	t.st.leads[l.ID] = *l
	return nil
}

func (t *memTx) CreateClient(_ context.Context, c *domain.Client) error {
	if err := t.check("CreateClient"); err != nil {
		return err
	}
	c.ID = t.st.nextID()
	c.CreatedAt, c.UpdatedAt = time.Now(), time.Now()
	t.st.clients[c.ID] = *c
	return nil
}

func (t *memTx) SaveClient(_ context.Context, c *domain.Client) error {
	c.UpdatedAt = time.Now()
	t.st.clients[c.ID] = *c
	return nil
}

func (t *memTx) DeleteClient(_ context.Context, id int64) error {
	st := t.st
	owned := func(ref domain.EntityRef) bool {
		if ref.Kind == domain.EntityClient {
			return ref.ID == id
		}
		if ref.Kind == domain.EntityCase {
			c, ok := st.cases[ref.ID]
			return ok && c.ClientID == id
		}
		return false
	}
	st.callLogs = filter(st.callLogs, func(l domain.CallLog) bool { return !owned(l.Entity) })
	st.notes = filter(st.notes, func(n domain.Note) bool { return !owned(n.Entity) })
	for caseID, c := range st.cases {
		if c.ClientID != id {
			continue
		}
		for aid, a := range st.attachments[domain.BankFormKind.Name] {
			if a.OwnerID == caseID {
				delete(st.attachments[domain.BankFormKind.Name], aid)
			}
		}
		st.caseChanges = filter(st.caseChanges, func(ch domain.CaseStageChange) bool { return ch.CaseID != caseID })
		delete(st.cases, caseID)
	}
	for aid, a := range st.attachments[domain.DocumentKind.Name] {
		if a.OwnerID == id {
			delete(st.attachments[domain.DocumentKind.Name], aid)
		}
	}
	st.clientChanges = filter(st.clientChanges, func(ch domain.ClientStatusChange) bool { return ch.ClientID != id })
	delete(st.clients, id)
	return nil
}

func (t *memTx) NextCaseNumber(_ context.Context) (int64, error) {
	t.st.caseCounter++
	return t.st.caseCounter, nil
}

func (t *memTx) CreateCase(_ context.Context, c *domain.Case) error {
	c.ID = t.st.nextID()
	c.CreatedAt, c.UpdatedAt = time.Now(), time.Now()
	c.BankProductIDs = filter(c.BankProductIDs, func(id int64) bool { return t.st.bankProducts[id] })
	t.st.cases[c.ID] = *c
	return nil
}

func (t *memTx) SaveCase(_ context.Context, c *domain.Case) error {
	if err := t.check("SaveCase"); err != nil {
		return err
	}
	c.UpdatedAt = time.Now()
	t.st.cases[c.ID] = *c
	return nil
}

func (t *memTx) table(kind domain.AttachmentKind) map[int64]domain.Attachment {
	tbl, ok := t.st.attachments[kind.Name]
	if !ok {
		tbl = map[int64]domain.Attachment{}
		t.st.attachments[kind.Name] = tbl
	}
	return tbl
}

func (t *memTx) CreateAttachments(ctx context.Context, kind domain.AttachmentKind, items []domain.Attachment) error {
	if err := t.check("CreateAttachments"); err != nil {
		return err
	}
	for i := range items {
		if err := t.CreateAttachment(ctx, kind, &items[i]); err != nil {
			return err
		}
	}
	return nil
}

func (t *memTx) CreateAttachment(_ context.Context, kind domain.AttachmentKind, a *domain.Attachment) error {
	if err := t.check("CreateAttachment"); err != nil {
		return err
	}
	a.ID = t.st.nextID()
	t.table(kind)[a.ID] = *a
	return nil
}

func (t *memTx) LockPlaceholder(_ context.Context, kind domain.AttachmentKind, ownerID int64, typ string) (*domain.Attachment, error) {
	for _, a := range sortedValues(t.table(kind)) {
		if a.OwnerID == ownerID && a.Type == typ {
			return &a, nil
		}
	}
	return nil, nil
}

func (t *memTx) LockAttachment(_ context.Context, kind domain.AttachmentKind, ownerID, id int64) (domain.Attachment, error) {
	a, ok := t.table(kind)[id]
	if !ok || a.OwnerID != ownerID {
		return domain.Attachment{}, apperr.NotFound(kind.Name + " not found")
	}
	return a, nil
}

func (t *memTx) SaveAttachment(_ context.Context, kind domain.AttachmentKind, a *domain.Attachment) error {
	if err := t.check("SaveAttachment"); err != nil {
		return err
	}
	t.table(kind)[a.ID] = *a
	return nil
}

func (t *memTx) DeleteAttachment(_ context.Context, kind domain.AttachmentKind, id int64) error {
	delete(t.table(kind), id)
	return nil
}

func (t *memTx) AddLeadChange(_ context.Context, c *domain.LeadStatusChange) error {
	if err := t.check("AddLeadChange"); err != nil {
		return err
	}
	c.ID = t.st.nextID()
	t.st.leadChanges = append(t.st.leadChanges, *c)
	return nil
}

func (t *memTx) AddClientChange(_ context.Context, c *domain.ClientStatusChange) error {
	if err := t.check("AddClientChange"); err != nil {
		return err
	}
	c.ID = t.st.nextID()
	t.st.clientChanges = append(t.st.clientChanges, *c)
	return nil
}

func (t *memTx) AddCaseChange(_ context.Context, c *domain.CaseStageChange) error {
	if err := t.check("AddCaseChange"); err != nil {
		return err
	}
	c.ID = t.st.nextID()
	t.st.caseChanges = append(t.st.caseChanges, *c)
	return nil
}

func (t *memTx) AddCallLog(_ context.Context, l *domain.CallLog) error {
	l.ID = t.st.nextID()
	t.st.callLogs = append(t.st.callLogs, *l)
	return nil
}

func (t *memTx) AddNote(_ context.Context, n *domain.Note) error {
	if err := t.check("AddNote"); err != nil {
		return err
	}
	n.ID = t.st.nextID()
	t.st.notes = append(t.st.notes, *n)
	return nil
}

func sortedValues[T any](m map[int64]T) []T {
	keys := slices.Sorted(maps.Keys(m))
	out := make([]T, 0, len(keys))
	for _, k := range keys {
		out = append(out, m[k])
	}
	return out
}

func paginate[T any](items []T, p ports.Page) []T {
	start := min(p.Offset(), len(items))
	end := min(start+p.PageSize, len(items))
	return items[start:end]
}

func filter[T any](items []T, keep func(T) bool) []T {
	var out []T
	for _, it := range items {
		if keep(it) {
			out = append(out, it)
		}
	}
	return out
}

// memFiles is an in-memory ports.FileStorage.
type memFiles struct {
	mu          sync.Mutex
	objects     map[string][]byte
	uploadErr   error
	deleteErr   error
	deleteCalls int
}

func newMemFiles() *memFiles {
	return &memFiles{objects: map[string][]byte{}}
}

func (f *memFiles) Upload(_ context.Context, bucket, key, _ string, r io.Reader, _ int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.uploadErr != nil {
		return f.uploadErr
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, r); err != nil {
		return err
	}
	f.objects[bucket+"/"+key] = buf.Bytes()
	return nil
}

func (f *memFiles) Delete(_ context.Context, bucket, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleteCalls++
	if f.deleteErr != nil {
		return f.deleteErr
	}
	delete(f.objects, bucket+"/"+key)
	return nil
}

func (f *memFiles) DownloadURL(_ context.Context, bucket, key string) (string, time.Time, error) {
	return "https://files.test/" + bucket + "/" + key, time.Now().Add(15 * time.Minute), nil
}

func (f *memFiles) has(bucket, key string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.objects[bucket+"/"+key]
	return ok
}

func (f *memFiles) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.objects)
}

type recordingCleanup struct {
	mu   sync.Mutex
	keys []string
}

func (c *recordingCleanup) EnqueueFileCleanup(_ context.Context, bucket, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.keys = append(c.keys, bucket+"/"+key)
	return nil
}

type recordingObserver struct {
	mu       sync.Mutex
	applied  []string
	rejected []string
}

func (o *recordingObserver) TransitionApplied(entity, operation, to string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.applied = append(o.applied, fmt.Sprintf("%s.%s->%s", entity, operation, to))
}

func (o *recordingObserver) TransitionRejected(entity, operation string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.rejected = append(o.rejected, entity+"."+operation)
}

var (
	_ ports.Store              = (*memStore)(nil)
	_ ports.Tx                 = (*memTx)(nil)
	_ ports.FileStorage        = (*memFiles)(nil)
	_ ports.CleanupScheduler   = (*recordingCleanup)(nil)
	_ ports.TransitionObserver = (*recordingObserver)(nil)
)
