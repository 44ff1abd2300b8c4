// Package pipeline wires the full analysis flow: dataset discovery and
// loading, index engineering, exploratory mining, model fitting, selection
// and reporting. Stages run sequentially; a stage failure that leaves later
// stages meaningless aborts the run, anything recoverable is logged and
// skipped.
package pipeline

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"github.com/google/uuid"

	"github.com/teacherwell/teacherwell/internal/config"
	"github.com/teacherwell/teacherwell/internal/dataset"
	"github.com/teacherwell/teacherwell/internal/logx"
	"github.com/teacherwell/teacherwell/internal/mining"
	"github.com/teacherwell/teacherwell/internal/model"
	"github.com/teacherwell/teacherwell/internal/report"
	"github.com/teacherwell/teacherwell/internal/runstore"
	"github.com/teacherwell/teacherwell/internal/survey"
)

// Outcome summarizes a finished run for the CLI layer.
type Outcome struct {
	RunID      string
	Record     model.SelectionRecord
	Candidates []model.Candidate
	Indices    *survey.Result
	NRows      int

	TablesDir  string
	FiguresDir string
	TextsDir   string
	ModelsDir  string
	Metadata   string
}

// Run executes every stage against the configured data directory.
func Run(cfg *config.Config, log *slog.Logger) (*Outcome, error) {
	runID := uuid.NewString()
	log = log.With("run_id", runID)

	dirs, err := prepareDirs(cfg.ResultsDir)
	if err != nil {
		return nil, err
	}

	ds, err := loadData(cfg, log)
	if err != nil {
		return nil, err
	}

	idx, err := buildIndices(cfg, ds, log)
	if err != nil {
		return nil, err
	}

	attachDerived(ds, idx, log)
	mineProfiles(cfg, ds, idx, dirs, log)

	m, cands, rec, err := fitAndSelect(cfg, idx, dirs, runID, log)
	if err != nil {
		return nil, err
	}

	writeReports(cfg, ds, idx, m, cands, rec, dirs, log)
	registerRun(cfg, ds, rec, dirs, log)

	return &Outcome{
		RunID:      runID,
		Record:     rec,
		Candidates: cands,
		Indices:    idx,
		NRows:      ds.NumRow(),
		TablesDir:  dirs.tables,
		FiguresDir: dirs.figures,
		TextsDir:   dirs.texts,
		ModelsDir:  dirs.models,
		Metadata:   filepath.Join(dirs.tables, "metadados_modelo.json"),
	}, nil
}

type outDirs struct {
	tables  string
	figures string
	texts   string
	models  string
}

func prepareDirs(resultsDir string) (outDirs, error) {
	d := outDirs{
		tables:  filepath.Join(resultsDir, "tabelas"),
		figures: filepath.Join(resultsDir, "figuras"),
		texts:   filepath.Join(resultsDir, "textos"),
		models:  filepath.Join(resultsDir, "modelos"),
	}
	for _, dir := range []string{d.tables, d.figures, d.texts, d.models} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return d, fmt.Errorf("create results dir: %w", err)
		}
	}
	return d, nil
}

func loadData(cfg *config.Config, log *slog.Logger) (*dataset.Dataset, error) {
	st := logx.NewStage(log, "carga", "localizando arquivo de respostas")
	path, err := dataset.Discover(cfg.DataDir)
	if err != nil {
		st.Error("descoberta falhou", "dir", cfg.DataDir, "err", err)
		return nil, fmt.Errorf("discover responses file: %w", err)
	}
	ds, err := dataset.Load(path)
	if err != nil {
		st.Error("leitura falhou", "arquivo", path, "err", err)
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	rep := ds.Clean()
	st.End("dados carregados",
		"arquivo", path,
		"linhas", ds.NumRow(),
		"colunas", len(ds.Columns()),
		"colunas_vazias_removidas", len(rep.DroppedEmptyColumns),
		"linhas_duplicadas", rep.DuplicateRows)
	return ds, nil
}

func buildIndices(cfg *config.Config, ds *dataset.Dataset, log *slog.Logger) (*survey.Result, error) {
	st := logx.NewStage(log, "indices", "derivando índices dos grupos de itens")
	voc := survey.NewVocabulary(cfg.AgreementScaleMax)
	b := survey.NewBuilder(voc, cfg.Groups, st.Logger())
	idx, err := b.Build(ds)
	if err != nil {
		if errors.Is(err, survey.ErrTargetUnresolved) {
			st.Error("grupo alvo sem colunas no dataset", "err", err)
		}
		return nil, err
	}
	st.End("índices construídos", "indices", len(idx.Order), "ignorados", len(idx.Skipped))
	return idx, nil
}

// attachDerived appends every engineered index plus the normalized target
// and its interpretive bands to the working frame, so later exports carry
// raw items and derived columns side by side.
func attachDerived(ds *dataset.Dataset, idx *survey.Result, log *slog.Logger) {
	for _, name := range idx.Order {
		if err := ds.AddFloatColumn(name, idx.Indices[name]); err != nil {
			log.Warn("falha ao anexar coluna derivada", "coluna", name, "err", err)
		}
	}
	if vals, ok := idx.Indices[idx.TargetNorm]; ok {
		if err := ds.AddFloatColumn(idx.TargetNorm, vals); err != nil {
			log.Warn("falha ao anexar alvo normalizado", "err", err)
		}
	}
	if len(idx.Bands) > 0 {
		if err := ds.AddStringColumn("faixa_"+idx.Target, idx.Bands); err != nil {
			log.Warn("falha ao anexar faixas do alvo", "err", err)
		}
	}
}

// mineProfiles runs the exploratory PCA + clustering pass over the derived
// indices. It is best-effort: failures never block modeling.
func mineProfiles(cfg *config.Config, ds *dataset.Dataset, idx *survey.Result, dirs outDirs, log *slog.Logger) {
	st := logx.NewStage(log, "mineracao", "projetando perfis (PCA + agrupamento)")
	res, err := mining.Run(idx.Indices, idx.Order, cfg.Clusters, cfg.Seed)
	if err != nil {
		st.Warn("mineração ignorada", "err", err)
		return
	}
	clusters := make([]string, len(res.Cluster))
	for i, c := range res.Cluster {
		clusters[i] = strconv.Itoa(c)
	}
	if err := ds.AddFloatColumn("pca_1", res.PCA1); err != nil {
		st.Warn("falha ao anexar componente", "err", err)
	}
	if err := ds.AddFloatColumn("pca_2", res.PCA2); err != nil {
		st.Warn("falha ao anexar componente", "err", err)
	}
	if err := ds.AddStringColumn("perfil", clusters); err != nil {
		st.Warn("falha ao anexar perfis", "err", err)
	}
	if err := report.ScatterClusters(
		filepath.Join(dirs.figures, "perfis_pca.png"),
		"Perfis docentes (PCA + K-Means)",
		res.PCA1, res.PCA2, res.Cluster); err != nil {
		st.Warn("falha ao gerar figura de perfis", "err", err)
	}
	st.End("perfis derivados",
		"grupos", cfg.Clusters,
		"variancia_explicada", res.ExplainedVariance,
		"inercia", res.Inertia)
}

func fitAndSelect(cfg *config.Config, idx *survey.Result, dirs outDirs, runID string, log *slog.Logger) (*model.Matrix, []model.Candidate, model.SelectionRecord, error) {
	st := logx.NewStage(log, "modelagem", "ajustando banco de modelos")

	target := idx.TargetNorm
	y := idx.Indices[target]
	var features []string
	for _, name := range idx.Order {
		if name != idx.Target && name != idx.TargetNorm {
			features = append(features, name)
		}
	}

	m, err := model.Assemble(target, y, features, idx.Indices)
	if err != nil {
		st.Error("matriz de modelagem inviável", "err", err)
		return nil, nil, model.SelectionRecord{}, fmt.Errorf("assemble design matrix: %w", err)
	}
	for _, d := range m.Dropped {
		st.Warn("preditor descartado", "variavel", d)
	}

	bank := &model.Bank{
		Seed:        cfg.Seed,
		Folds:       cfg.CVFolds,
		ForestTrees: cfg.ForestTrees,
		BoostRounds: cfg.BoostRounds,
		Interaction: cfg.InteractionTerms,
		Log:         st.Logger(),
	}
	cands := bank.Run(m, dirs.models, runID)

	winner, err := model.Select(cands)
	if err != nil {
		st.Error("nenhum candidato ajustado", "err", err)
		return m, cands, model.SelectionRecord{}, err
	}
	stats := model.ComputeTargetStats(m.Y)
	rec := model.NewSelectionRecord(runID, winner, target, m.Features, stats)
	st.End("modelo selecionado", "melhor_modelo", rec.BestModel, "cv_r2", winner.Metrics.CVR2)
	return m, cands, rec, nil
}

// writeReports emits every table, figure and text artifact. Individual
// failures are logged but never abort the run: a missing figure should not
// cost the metadata record.
func writeReports(cfg *config.Config, ds *dataset.Dataset, idx *survey.Result, m *model.Matrix, cands []model.Candidate, rec model.SelectionRecord, dirs outDirs, log *slog.Logger) {
	st := logx.NewStage(log, "relatorios", "gravando tabelas e figuras")

	warn := func(what string, err error) {
		if err != nil {
			st.Warn("falha ao gravar artefato", "artefato", what, "err", err)
		}
	}

	warn("comparativo de modelos", report.WriteCandidates(
		filepath.Join(dirs.tables, "comparativo_modelos.csv"), cands))
	warn("contribuições", report.WriteContributions(
		filepath.Join(dirs.tables, "contribuicoes_indices.csv"), idx.Order, idx.Contributions))
	warn("metadados", report.WriteMetadata(
		filepath.Join(dirs.tables, "metadados_modelo.json"), rec))

	var winner *model.Candidate
	var ols *model.OLSResult
	for i := range cands {
		if cands[i].Name == rec.BestModel {
			winner = &cands[i]
		}
		if cands[i].Name == model.NameOLS && cands[i].OK() {
			ols = cands[i].OLS
		}
	}
	if ols != nil {
		warn("coeficientes", report.WriteOLSCoefficients(
			filepath.Join(dirs.tables, "coeficientes_ols.csv"), ols))
		warn("variáveis significativas", report.WriteSignificant(
			filepath.Join(dirs.tables, "variaveis_significativas.csv"), ols))
	}
	if winner != nil && len(winner.Importances) > 0 {
		warn("importâncias", report.WriteImportances(
			filepath.Join(dirs.tables, "importancia_variaveis.csv"), winner.Importances))
		warn("figura de importâncias", report.ImportanceBars(
			filepath.Join(dirs.figures, "importancia_variaveis.png"),
			"Importância das variáveis", winner.Importances, 10))
	}

	if y, ok := idx.Indices[idx.TargetNorm]; ok {
		warn("histograma do alvo", report.HistogramPlot(
			filepath.Join(dirs.figures, "distribuicao_alvo.png"),
			"Distribuição do índice de bem-estar (normalizado)", y))
	}
	if winner != nil && len(winner.Predicted) == len(m.Y) {
		warn("dispersão previsto x observado", report.ScatterPlot(
			filepath.Join(dirs.figures, "previsto_vs_observado.png"),
			"Previsto vs. observado ("+rec.BestModel+")",
			m.Y, winner.Predicted))
	}

	recs := report.Recommendations(cfg.Scenario, winner, ols, rec.TargetStats)
	warn("recomendações", report.WriteRecommendations(
		filepath.Join(dirs.texts, "recomendacoes.md"), cfg.Scenario, recs))

	warn("base enriquecida", ds.WriteCSV(
		filepath.Join(dirs.tables, "base_enriquecida.csv")))

	st.End("relatórios gravados", "tabelas", dirs.tables, "figuras", dirs.figures)
}

// registerRun records the finished run in the local registry. Best-effort:
// a registry problem is reported but the run artifacts already exist.
func registerRun(cfg *config.Config, ds *dataset.Dataset, rec model.SelectionRecord, dirs outDirs, log *slog.Logger) {
	store, err := runstore.Open(cfg.RunDBPath)
	if err != nil {
		log.Warn("registro de execuções indisponível", "err", err)
		return
	}
	defer store.Close()
	err = store.Insert(runstore.Run{
		ID:           rec.RunID,
		Country:      cfg.Scenario.Country,
		Subject:      cfg.Scenario.Subject,
		Theme:        cfg.Scenario.Theme,
		BestModel:    rec.BestModel,
		Criterion:    rec.Criterion,
		Target:       rec.Target,
		NRows:        ds.NumRow(),
		ArtifactPath: rec.ArtifactPath,
		MetadataPath: filepath.Join(dirs.tables, "metadados_modelo.json"),
	})
	if err != nil {
		log.Warn("falha ao registrar execução", "err", err)
	}
}
