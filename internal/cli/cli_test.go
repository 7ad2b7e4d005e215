package cli_test

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/txnimport/internal/cli"
)

const statementCSV = "Estratto conto corrente;;\n" +
	"Data;Importo;Descrizione\n" +
	"05/03/2024;-32,40;Esselunga Spesa\n" +
	"06/03/2024;1.500,00;Bonifico stipendio\n" +
	"07/03/2024;-18,00;Pizzeria da Gino\n" +
	"08/03/2024;0,00;Storno\n"

type env struct {
	dir string
	db  string
}

func newEnv(t *testing.T) env {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "marzo.csv"), []byte(statementCSV), 0o600))
	return env{dir: dir, db: filepath.Join(dir, "ledger.db")}
}

func (e env) file() string {
	return filepath.Join(e.dir, "marzo.csv")
}

func (e env) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := cli.NewRootCommand()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(append([]string{"--db", e.db, "--locale", "it"}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func TestImport_NewLayoutNeedsMapping(t *testing.T) {
	e := newEnv(t)

	out, err := e.run(t, "import", e.file())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "new layout")
	assert.Contains(t, out, "no saved mapping")
	assert.Contains(t, out, "Descrizione")
	assert.Contains(t, out, "--date 0 --amount 1")
}

func TestImport_SecondRunSkipsDuplicates(t *testing.T) {
	e := newEnv(t)

	out, err := e.run(t, "import", e.file(), "--name", "Intesa", "--date", "0", "--amount", "1", "--desc", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "manual mapping")
	assert.Contains(t, out, "parsed 3, dropped 1")
	assert.Contains(t, out, "added 3, skipped 0 duplicates")

	out, err = e.run(t, "import", e.file())
	require.NoError(t, err)
	assert.Contains(t, out, `layout "Intesa" (saved mapping)`)
	assert.Contains(t, out, "added 0, skipped 3 duplicates")

	out, err = e.run(t, "history")
	require.NoError(t, err)
	assert.Contains(t, out, "marzo.csv")
	assert.Contains(t, out, "Intesa")
}

func TestImport_DryRunStoresNothing(t *testing.T) {
	e := newEnv(t)

	out, err := e.run(t, "import", e.file(), "--dry-run", "--date", "0", "--amount", "1", "--desc", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "dry run: nothing stored")
	assert.Contains(t, out, "Esselunga Spesa")
	assert.Contains(t, out, "32.40")

	out, err = e.run(t, "configs", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "no saved mappings")

	out, err = e.run(t, "history")
	require.NoError(t, err)
	assert.Contains(t, out, "no imports yet")
}

func TestImport_BadMode(t *testing.T) {
	e := newEnv(t)

	_, err := e.run(t, "import", e.file(), "--date", "0", "--amount", "1", "--mode", "sideways")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown amount mode")
}

func TestConfigs_ListAndDelete(t *testing.T) {
	e := newEnv(t)

	_, err := e.run(t, "import", e.file(), "--name", "Intesa", "--date", "0", "--amount", "1", "--desc", "2")
	require.NoError(t, err)

	out, err := e.run(t, "configs", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Intesa")
	assert.Contains(t, out, "date=0 desc=2 amount=1")
	assert.Contains(t, out, "data|importo|descrizione")

	out, err = e.run(t, "configs", "delete", "data|importo|descrizione")
	require.NoError(t, err)
	assert.Contains(t, out, "deleted mapping")

	_, err = e.run(t, "configs", "delete", "data|importo|descrizione")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestCategories_ResolveGuessedKeys(t *testing.T) {
	e := newEnv(t)

	out, err := e.run(t, "categories", "set", "cat-shop=Shopping", "cat-food=Restaurants")
	require.NoError(t, err)
	assert.Contains(t, out, "2 categories stored")

	out, err = e.run(t, "categories", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "cat-shop\tShopping")

	out, err = e.run(t, "import", e.file(), "--dry-run", "--date", "0", "--amount", "1", "--desc", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "cat-shop")
	assert.Contains(t, out, "cat-food")

	_, err = e.run(t, "categories", "set", "broken")
	require.Error(t, err)
}

func TestReportError(t *testing.T) {
	e := newEnv(t)

	_, err := e.run(t, "import", e.file())
	require.Error(t, err)

	var buf bytes.Buffer
	cli.ReportError(&buf, err)
	assert.Contains(t, buf.String(), "Error: new layout")
	assert.Contains(t, buf.String(), "(Code: MAP003)")

	buf.Reset()
	cli.ReportError(&buf, errors.New("disk on fire"))
	assert.Equal(t, "Error: disk on fire\n", buf.String())

	buf.Reset()
	cli.ReportError(&buf, nil)
	assert.Empty(t, buf.String())
}
