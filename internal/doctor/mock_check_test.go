package doctor

import "github.com/stretchr/testify/mock"

// MockCheck is a testify mock implementing Check.
type MockCheck struct {
	mock.Mock
}

// NewMockCheck creates a MockCheck whose expectations are asserted on cleanup.
func NewMockCheck(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockCheck {
	m := &MockCheck{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

// MockCheckExpecter records expectations on a MockCheck.
type MockCheckExpecter struct {
	mock *mock.Mock
}

// EXPECT returns the expecter for m.
func (m *MockCheck) EXPECT() *MockCheckExpecter {
	return &MockCheckExpecter{mock: &m.Mock}
}

func (m *MockCheck) Name() string {
	return m.Called().String(0)
}

func (m *MockCheck) Category() string {
	return m.Called().String(0)
}

func (m *MockCheck) Run() *CheckResult {
	ret := m.Called()
	if r, ok := ret.Get(0).(*CheckResult); ok {
		return r
	}
	return nil
}

// Name expects a call to Name.
func (e *MockCheckExpecter) Name() *mock.Call {
	return e.mock.On("Name")
}

// Category expects a call to Category.
func (e *MockCheckExpecter) Category() *mock.Call {
	return e.mock.On("Category")
}

// Run expects a call to Run.
func (e *MockCheckExpecter) Run() *mock.Call {
	return e.mock.On("Run")
}

// mockFixerCheck is a Check that also implements Fixer.
type mockFixerCheck struct {
	*MockCheck
	canFix bool
	fixed  int
}

func (m *mockFixerCheck) CanFix() bool { return m.canFix }

func (m *mockFixerCheck) Fix() []FixResult {
	m.fixed++
	return []FixResult{{Path: "/mock", Fixed: true, Description: "fixed"}}
}
