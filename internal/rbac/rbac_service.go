package rbac

import (
	"sync"

	"github.com/casbin/casbin/v2"
	"go.uber.org/zap"
)

const (
	ResourceLeave    = "leave"
	ResourceCredit   = "credit"
	ResourceEmployee = "employee"

	ActionCreate = "create"
	ActionRead   = "read"
	ActionUpdate = "update"
	ActionCancel = "cancel"
	ActionDecide = "decide"
	ActionReview = "review"
	ActionExport = "export"
	ActionManage = "manage"
)

// DefaultPolicies is the LCMS permission matrix.
var DefaultPolicies = []Policy{
	{Role: "employee", Resource: ResourceLeave, Action: ActionCreate},
	{Role: "employee", Resource: ResourceLeave, Action: ActionRead},
	{Role: "employee", Resource: ResourceLeave, Action: ActionUpdate},
	{Role: "employee", Resource: ResourceLeave, Action: ActionCancel},
	{Role: "employee", Resource: ResourceCredit, Action: ActionRead},

	{Role: "supervisor", Resource: ResourceLeave, Action: ActionDecide},
	{Role: "supervisor", Resource: ResourceLeave, Action: ActionReview},
	{Role: "supervisor", Resource: ResourceEmployee, Action: ActionRead},

	{Role: "hr", Resource: ResourceLeave, Action: ActionDecide},
	{Role: "hr", Resource: ResourceLeave, Action: ActionReview},
	{Role: "hr", Resource: ResourceLeave, Action: ActionExport},
	{Role: "hr", Resource: ResourceCredit, Action: ActionManage},
	{Role: "hr", Resource: ResourceEmployee, Action: ActionRead},
	{Role: "hr", Resource: ResourceEmployee, Action: ActionCreate},
}

// DefaultInheritance lists child -> parent role edges.
var DefaultInheritance = [][2]string{
	{"supervisor", "employee"},
	{"hr", "employee"},
}

type Service interface {
	Enforce(req EnforceRequest) (bool, error)
}

type service struct {
	enforcer *casbin.Enforcer
	mu       sync.RWMutex
	logger   *zap.Logger
}

// NewService loads policies and role edges into enforcer.
func NewService(enforcer *casbin.Enforcer, policies []Policy, inheritance [][2]string, logger ...*zap.Logger) (Service, error) {
	l := zap.L().Named("rbac.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("rbac.service")
	}

	rules := make([][]string, 0, len(policies))
	for _, p := range policies {
		rules = append(rules, []string{p.Role, p.Resource, p.Action})
	}
	if len(rules) > 0 {
		if _, err := enforcer.AddPolicies(rules); err != nil {
			return nil, err
		}
	}
	for _, edge := range inheritance {
		if _, err := enforcer.AddGroupingPolicy(edge[0], edge[1]); err != nil {
			return nil, err
		}
	}
	l.Info("rbac policy loaded", zap.Int("policies", len(rules)), zap.Int("role_edges", len(inheritance)))

	return &service{enforcer: enforcer, logger: l}, nil
}

func (s *service) Enforce(req EnforceRequest) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	allowed, err := s.enforcer.Enforce(req.Role, req.Resource, req.Action)
	if err != nil {
		s.logger.Error("rbac enforce failed",
			zap.String("role", req.Role),
			zap.String("resource", req.Resource),
			zap.String("action", req.Action),
			zap.Error(err),
		)
		return false, err
	}

	s.logger.Debug("rbac enforce result",
		zap.String("role", req.Role),
		zap.String("resource", req.Resource),
		zap.String("action", req.Action),
		zap.Bool("allowed", allowed),
	)
	return allowed, nil
}
