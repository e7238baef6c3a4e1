package scoring

import (
	"reflect"
	"testing"
	"time"

	"github.com/MrSnakeDoc/scoreboard/internal/domain"
)

func matrixSnapshot() Snapshot {
	return Snapshot{
		Teams: []domain.Team{
			{ID: 2, Name: "blue"},
			{ID: 1, Name: "red"},
			{ID: 3, Name: "idle"},
		},
		Services: []domain.Service{
			{ID: 1, Name: "web_http", Box: "web", Port: 80, Award: 2},
			{ID: 2, Name: "db_sql", Box: "db"},
			{ID: 3, Name: "ftp_ftp", Box: "ftp", Disabled: true},
		},
		Ledger: []domain.TeamService{
			{Key: key(1, 1), IsUp: true},
			{Key: key(1, 2), IsUp: false},
			{Key: key(1, 3), IsUp: true},
			{Key: key(2, 1), IsUp: false},
		},
	}
}

func TestBuildMatrixPublic(t *testing.T) {
	now := time.Date(2024, 3, 1, 14, 30, 0, 0, time.FixedZone("CET", 3600))
	m := buildMatrix(matrixSnapshot(), MatrixPublic, now)

	if want := []string{"db_sql", "web_http"}; !reflect.DeepEqual(m.Services, want) {
		t.Errorf("Services = %v, want %v", m.Services, want)
	}

	want := []MatrixRow{
		{Team: "blue", Status: map[string]bool{"web_http": false}},
		{Team: "red", Status: map[string]bool{"web_http": true, "db_sql": false}},
	}
	if !reflect.DeepEqual(m.Rows, want) {
		t.Errorf("Rows = %+v, want %+v", m.Rows, want)
	}

	if m.LastUpdated.Location() != time.UTC || !m.LastUpdated.Equal(now) {
		t.Errorf("LastUpdated = %v, want %v in UTC", m.LastUpdated, now)
	}
}

func TestBuildMatrixAdminIncludesDisabled(t *testing.T) {
	m := buildMatrix(matrixSnapshot(), MatrixAdmin, time.Now())

	if want := []string{"db_sql", "ftp_ftp", "web_http"}; !reflect.DeepEqual(m.Services, want) {
		t.Errorf("Services = %v, want %v", m.Services, want)
	}
	for _, row := range m.Rows {
		if row.Team == "red" {
			if up, ok := row.Status["ftp_ftp"]; !ok || !up {
				t.Errorf("admin matrix missing disabled cell for red: %+v", row.Status)
			}
		}
	}
}

func TestBuildMatrixAbsentIsNotDown(t *testing.T) {
	m := buildMatrix(matrixSnapshot(), MatrixPublic, time.Now())
	for _, row := range m.Rows {
		if row.Team != "blue" {
			continue
		}
		if _, ok := row.Status["db_sql"]; ok {
			t.Error("blue has no db_sql ledger row; the cell must be absent")
		}
		if _, ok := row.Status["ftp_ftp"]; ok {
			t.Error("disabled service must be absent from the public matrix")
		}
	}
}

func TestBuildMatrixColumnsAreDistinctNames(t *testing.T) {
	snap := Snapshot{
		Teams: []domain.Team{{ID: 1, Name: "a"}, {ID: 2, Name: "b"}, {ID: 3, Name: "c"}},
		Services: []domain.Service{
			{ID: 1, Name: "zeta"},
			{ID: 2, Name: "alpha"},
			{ID: 3, Name: "mid"},
		},
	}
	for team := 1; team <= 3; team++ {
		snap.Ledger = append(snap.Ledger, domain.TeamService{Key: key(team, 2)})
	}

	m := buildMatrix(snap, MatrixPublic, time.Now())
	if want := []string{"alpha", "mid", "zeta"}; !reflect.DeepEqual(m.Services, want) {
		t.Errorf("Services = %v, want %v", m.Services, want)
	}
}

func TestBuildMatrixEmpty(t *testing.T) {
	m := buildMatrix(Snapshot{}, MatrixPublic, time.Now())
	if m.Services == nil || m.Rows == nil {
		t.Errorf("empty matrix should use empty slices, got %+v", m)
	}
}
