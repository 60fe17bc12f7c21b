package httpapi_test

import (
	"context"
	"io"

	"github.com/haukened/bindmgr/internal/dns/domain"
	"github.com/haukened/bindmgr/internal/dns/gateways/httpapi"
	"github.com/haukened/bindmgr/internal/dns/gateways/probe"
	"github.com/haukened/bindmgr/internal/dns/repos/blocklist"
	"github.com/haukened/bindmgr/internal/dns/repos/blocklist/parsers"
	"github.com/haukened/bindmgr/internal/dns/repos/zonefile"
	"github.com/haukened/bindmgr/internal/dns/services/manager"
	"github.com/stretchr/testify/mock"
)

type mockService struct {
	mock.Mock
}

var _ httpapi.Service = (*mockService)(nil)

func (m *mockService) Health(ctx context.Context) domain.Health {
	return m.Called().Get(0).(domain.Health)
}

func (m *mockService) Reload(ctx context.Context) error {
	return m.Called().Error(0)
}

func (m *mockService) ListZones() ([]domain.Zone, error) {
	args := m.Called()
	zones, _ := args.Get(0).([]domain.Zone)
	return zones, args.Error(1)
}

func (m *mockService) CreateZone(ctx context.Context, req manager.CreateZoneRequest) (domain.Zone, error) {
	args := m.Called(req)
	zone, _ := args.Get(0).(domain.Zone)
	return zone, args.Error(1)
}

func (m *mockService) DeleteZone(ctx context.Context, zone string) error {
	return m.Called(zone).Error(0)
}

func (m *mockService) CheckZone(zone string) (zonefile.CheckReport, error) {
	args := m.Called(zone)
	report, _ := args.Get(0).(zonefile.CheckReport)
	return report, args.Error(1)
}

func (m *mockService) ListRecords(zone string) ([]domain.Record, error) {
	args := m.Called(zone)
	records, _ := args.Get(0).([]domain.Record)
	return records, args.Error(1)
}

func (m *mockService) AddRecord(ctx context.Context, zone string, req manager.RecordRequest) (domain.Record, error) {
	args := m.Called(zone, req)
	rec, _ := args.Get(0).(domain.Record)
	return rec, args.Error(1)
}

func (m *mockService) UpdateRecord(ctx context.Context, zone string, id int, req manager.RecordRequest) (domain.Record, error) {
	args := m.Called(zone, id, req)
	rec, _ := args.Get(0).(domain.Record)
	return rec, args.Error(1)
}

func (m *mockService) DeleteRecord(ctx context.Context, zone string, id int) (domain.Record, error) {
	args := m.Called(zone, id)
	rec, _ := args.Get(0).(domain.Record)
	return rec, args.Error(1)
}

func (m *mockService) ListBlockedZones() ([]domain.BlockedZone, error) {
	args := m.Called()
	zones, _ := args.Get(0).([]domain.BlockedZone)
	return zones, args.Error(1)
}

func (m *mockService) BlockZone(ctx context.Context, req manager.BlockRequest) (domain.BlockedZone, error) {
	args := m.Called(req)
	zone, _ := args.Get(0).(domain.BlockedZone)
	return zone, args.Error(1)
}

func (m *mockService) UnblockZone(ctx context.Context, name string) error {
	return m.Called(name).Error(0)
}

func (m *mockService) ImportBlocklist(ctx context.Context, r io.Reader, format parsers.Format, source string) (manager.ImportResult, error) {
	args := m.Called(r, format, source)
	res, _ := args.Get(0).(manager.ImportResult)
	return res, args.Error(1)
}

func (m *mockService) CheckBlocked(name string) (domain.BlockDecision, error) {
	args := m.Called(name)
	d, _ := args.Get(0).(domain.BlockDecision)
	return d, args.Error(1)
}

func (m *mockService) BlocklistStats() blocklist.Stats {
	return m.Called().Get(0).(blocklist.Stats)
}

func (m *mockService) NullRoute(ctx context.Context, req manager.BlockRequest) error {
	return m.Called(req).Error(0)
}

func (m *mockService) RemoveNullRoute(ctx context.Context, name string) error {
	return m.Called(name).Error(0)
}

func (m *mockService) ListForwarders() ([]string, error) {
	args := m.Called()
	fwds, _ := args.Get(0).([]string)
	return fwds, args.Error(1)
}

func (m *mockService) AddForwarder(ctx context.Context, ip string) error {
	return m.Called(ip).Error(0)
}

func (m *mockService) RemoveForwarder(ctx context.Context, ip string) error {
	return m.Called(ip).Error(0)
}

func (m *mockService) CheckForwarders(ctx context.Context) ([]probe.Result, error) {
	args := m.Called()
	res, _ := args.Get(0).([]probe.Result)
	return res, args.Error(1)
}

func (m *mockService) Recursion() (domain.RecursionSettings, error) {
	args := m.Called()
	rec, _ := args.Get(0).(domain.RecursionSettings)
	return rec, args.Error(1)
}

func (m *mockService) SetRecursion(ctx context.Context, enabled bool) error {
	return m.Called(enabled).Error(0)
}

func (m *mockService) AddRecursionNetwork(ctx context.Context, network string) error {
	return m.Called(network).Error(0)
}

func (m *mockService) RemoveRecursionNetwork(ctx context.Context, network string) error {
	return m.Called(network).Error(0)
}

func (m *mockService) Configuration() (domain.ServerSettings, error) {
	args := m.Called()
	s, _ := args.Get(0).(domain.ServerSettings)
	return s, args.Error(1)
}

func (m *mockService) ReplaceConfiguration(ctx context.Context, s domain.ServerSettings) error {
	return m.Called(s).Error(0)
}
