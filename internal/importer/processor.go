package importer

import (
	"context"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/spec-kit/ticket-import/internal/domain"
)

var numericRegex = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)([eE][+-]?\d+)?$`)

// ProcessorConfig holds the run-level inputs of the row processor.
type ProcessorConfig struct {
	Defaults       domain.ImportDefaults
	DefaultContent string
	Now            func() time.Time
}

// Processor turns mapped row fields into a ticket input. It never talks to
// the creation collaborator.
type Processor struct {
	resolver       *Resolver
	defaults       domain.ImportDefaults
	defaultContent string
	now            func() time.Time
}

// NewProcessor constructs a processor.
func NewProcessor(resolver *Resolver, cfg ProcessorConfig) *Processor {
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &Processor{
		resolver:       resolver,
		defaults:       cfg.Defaults,
		defaultContent: cfg.DefaultContent,
		now:            now,
	}
}

var identifierFields = []struct {
	field string
	kind  LookupKind
}{
	{FieldRequester, LookupUser},
	{FieldAssignee, LookupUser},
	{FieldCategory, LookupCategory},
	{FieldEntity, LookupEntity},
	{FieldLocation, LookupLocation},
	{FieldGroup, LookupGroup},
}

// Prepare merges defaults with the row values, then normalizes enums,
// resolves names and coerces dates.
func (p *Processor) Prepare(ctx context.Context, fields MappedFields, rc RunContext) *domain.TicketInput {
	now := p.now()
	values := p.baseValues(rc, now)
	for field, value := range fields {
		values[field] = value
	}

	input := &domain.TicketInput{
		Name:       values[FieldName],
		Content:    values[FieldContent],
		Urgency:    domain.Level(Normalize(EnumUrgency, values[FieldUrgency])),
		Impact:     domain.Level(Normalize(EnumImpact, values[FieldImpact])),
		Priority:   domain.Level(Normalize(EnumPriority, values[FieldPriority])),
		Type:       domain.TicketType(Normalize(EnumType, values[FieldType])),
		Status:     domain.TicketStatus(Normalize(EnumStatus, values[FieldStatus])),
		Validation: domain.ValidationStatus(Normalize(EnumValidation, values[FieldValidation])),
	}

	ids := make(map[string]int64, len(identifierFields))
	for _, idf := range identifierFields {
		raw, ok := values[idf.field]
		if !ok {
			continue
		}
		if id, numeric := parseNumericID(raw); numeric {
			ids[idf.field] = id
			continue
		}
		ids[idf.field] = p.resolver.Resolve(ctx, idf.kind, raw, rc)
	}
	input.RequesterID = ids[FieldRequester]
	input.AssigneeID = ids[FieldAssignee]
	input.CategoryID = ids[FieldCategory]
	input.EntityID = ids[FieldEntity]
	input.LocationID = ids[FieldLocation]
	input.GroupID = ids[FieldGroup]

	if raw, ok := values[FieldDate]; ok {
		input.Date, _ = normalizeDate(raw, now)
	}
	if raw, ok := values[FieldTimeToResolve]; ok {
		input.TimeToResolve, _ = normalizeDate(raw, now)
	}
	if raw, ok := values[FieldActionTime]; ok {
		input.ActionTime, _ = parseActionTime(raw)
	}
	return input
}

// baseValues returns hard defaults overlaid with configured defaults.
func (p *Processor) baseValues(rc RunContext, now time.Time) MappedFields {
	values := MappedFields{
		FieldType:       strconv.Itoa(int(domain.TicketTypeIncident)),
		FieldStatus:     strconv.Itoa(int(domain.TicketStatusNew)),
		FieldValidation: strconv.Itoa(int(domain.ValidationNone)),
		FieldDate:       now.Format(domain.DateTimeLayout),
	}
	if p.defaultContent != "" {
		values[FieldContent] = p.defaultContent
	}
	if rc.ActorID > 0 {
		values[FieldRequester] = strconv.FormatInt(rc.ActorID, 10)
	}

	entity := p.defaults.EntityID
	if rc.HasActiveEntity {
		entity = rc.ActiveEntityID
	}
	values[FieldEntity] = strconv.FormatInt(entity, 10)
	values[FieldCategory] = strconv.FormatInt(p.defaults.CategoryID, 10)
	values[FieldUrgency] = strconv.Itoa(orDefault(p.defaults.Urgency, 3))
	values[FieldImpact] = strconv.Itoa(orDefault(p.defaults.Impact, 2))
	values[FieldPriority] = strconv.Itoa(orDefault(p.defaults.Priority, 3))
	return values
}

func orDefault(v, fallback int) int {
	if v == 0 {
		return fallback
	}
	return v
}

// parseNumericID reports whether raw is numeric text and returns its
// integral value.
func parseNumericID(raw string) (int64, bool) {
	s := strings.TrimSpace(raw)
	if !numericRegex.MatchString(s) {
		return 0, false
	}
	if id, err := strconv.ParseInt(s, 10, 64); err == nil {
		return id, true
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
		return 0, false
	}
	return int64(f), true
}
