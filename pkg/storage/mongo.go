package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/riorajhon/lotteryd/pkg/draws"
	"github.com/riorajhon/lotteryd/pkg/engine"
	"github.com/riorajhon/lotteryd/pkg/lottery"
	"github.com/riorajhon/lotteryd/pkg/observability"
)

// Collection name suffixes; raw draws live in the bare slug collection.
const (
	featuresSuffix   = "_draw_features"
	numbersSuffix    = "_number_history"
	combosSuffix     = "_pair_trio_history"
	metadataCollName = "scraper_metadata"
)

// Mongo implements Store over a MongoDB database.
type Mongo struct {
	log    logrus.FieldLogger
	config *Config
	client *mongo.Client
	db     *mongo.Database
}

var _ Store = (*Mongo)(nil)

// NewMongo creates a MongoDB-backed store. Call Start before use.
func NewMongo(log logrus.FieldLogger, cfg *Config) (*Mongo, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Mongo{
		log:    log.WithField("component", "storage"),
		config: cfg,
	}, nil
}

// Start connects to MongoDB and verifies connectivity.
func (m *Mongo) Start(ctx context.Context) error {
	connectCtx, cancel := context.WithTimeout(ctx, m.config.ConnectTimeout)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(m.config.URI))
	if err != nil {
		return fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	if err := client.Ping(connectCtx, nil); err != nil {
		return fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	m.client = client
	m.db = client.Database(m.config.Database)

	m.log.WithField("database", m.config.Database).Info("Connected to MongoDB")

	return nil
}

// Stop disconnects from MongoDB.
func (m *Mongo) Stop(ctx context.Context) error {
	if m.client == nil {
		return nil
	}

	if err := m.client.Disconnect(ctx); err != nil {
		return fmt.Errorf("failed to disconnect from MongoDB: %w", err)
	}

	m.log.Info("Disconnected from MongoDB")

	return nil
}

// EnsureIndexes creates the unique indexes backing idempotent writes for one
// game. Safe to call repeatedly.
func (m *Mongo) EnsureIndexes(ctx context.Context, cfg *lottery.Config) error {
	unique := options.Index().SetUnique(true)

	specs := []struct {
		coll  *mongo.Collection
		model mongo.IndexModel
	}{
		{m.rawColl(cfg), mongo.IndexModel{
			Keys: bson.D{{Key: "id_sorteo", Value: 1}}, Options: unique,
		}},
		{m.featuresColl(cfg), mongo.IndexModel{
			Keys: bson.D{{Key: "draw_id", Value: 1}}, Options: unique,
		}},
		{m.featuresColl(cfg), mongo.IndexModel{
			Keys: bson.D{{Key: "draw_index", Value: -1}},
		}},
		{m.numbersColl(cfg), mongo.IndexModel{
			Keys: bson.D{{Key: "pool", Value: 1}, {Key: "number", Value: 1}}, Options: unique,
		}},
		{m.combosColl(cfg), mongo.IndexModel{
			Keys: bson.D{{Key: "type", Value: 1}, {Key: "scope", Value: 1}, {Key: "combo", Value: 1}}, Options: unique,
		}},
		{m.metadataColl(), mongo.IndexModel{
			Keys: bson.D{{Key: "lottery", Value: 1}}, Options: unique,
		}},
	}

	for _, spec := range specs {
		if _, err := spec.coll.Indexes().CreateOne(ctx, spec.model); err != nil {
			return fmt.Errorf("failed to create index on %s: %w", spec.coll.Name(), err)
		}
	}

	return nil
}

func (m *Mongo) rawColl(cfg *lottery.Config) *mongo.Collection {
	return m.db.Collection(cfg.Slug)
}

func (m *Mongo) featuresColl(cfg *lottery.Config) *mongo.Collection {
	return m.db.Collection(cfg.Slug + featuresSuffix)
}

func (m *Mongo) numbersColl(cfg *lottery.Config) *mongo.Collection {
	return m.db.Collection(cfg.Slug + numbersSuffix)
}

func (m *Mongo) combosColl(cfg *lottery.Config) *mongo.Collection {
	return m.db.Collection(cfg.Slug + combosSuffix)
}

func (m *Mongo) metadataColl() *mongo.Collection {
	return m.db.Collection(metadataCollName)
}

// queryCtx applies the configured query timeout unless the caller already
// carries a deadline.
func (m *Mongo) queryCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	if _, ok := ctx.Deadline(); ok {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, m.config.QueryTimeout)
}

func (m *Mongo) observe(operation string, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	observability.RecordStoreOperation(operation, status)
}

func (m *Mongo) SaveRawDraws(ctx context.Context, cfg *lottery.Config, raws []draws.RawDraw) (saved int, err error) {
	defer func() { m.observe("save_raw_draws", err) }()

	ctx, cancel := m.queryCtx(ctx)
	defer cancel()

	coll := m.rawColl(cfg)
	for i := range raws {
		raw := &raws[i]

		res, upsertErr := coll.UpdateOne(ctx,
			bson.M{"id_sorteo": raw.DrawID},
			bson.M{"$set": raw},
			options.Update().SetUpsert(true))
		if upsertErr != nil {
			return saved, fmt.Errorf("failed to upsert raw draw %s: %w", raw.DrawID, upsertErr)
		}

		saved += int(res.UpsertedCount)
	}

	return saved, nil
}

func rawWindowFilter(window DateWindow) bson.M {
	filter := bson.M{}
	if window.From == "" && window.To == "" {
		return filter
	}

	bounds := bson.M{}
	if window.From != "" {
		bounds["$gte"] = window.From
	}
	if window.To != "" {
		// Timestamps are "YYYY-MM-DD HH:MM:SS"; keep the whole end day
		bounds["$lte"] = window.To + " 23:59:59"
	}
	filter["fecha_sorteo"] = bounds

	return filter
}

func (m *Mongo) RawDraws(ctx context.Context, cfg *lottery.Config, window DateWindow) (out []draws.RawDraw, err error) {
	defer func() { m.observe("raw_draws", err) }()

	ctx, cancel := m.queryCtx(ctx)
	defer cancel()

	cursor, err := m.rawColl(cfg).Find(ctx, rawWindowFilter(window),
		options.Find().SetSort(bson.D{{Key: "fecha_sorteo", Value: 1}, {Key: "id_sorteo", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to query raw draws: %w", err)
	}

	if err := cursor.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("failed to decode raw draws: %w", err)
	}

	return out, nil
}

func (m *Mongo) ListRawDraws(ctx context.Context, cfg *lottery.Config, window DateWindow, page Page) (out []draws.RawDraw, total int, err error) {
	defer func() { m.observe("list_raw_draws", err) }()

	ctx, cancel := m.queryCtx(ctx)
	defer cancel()

	filter := rawWindowFilter(window)

	count, err := m.rawColl(cfg).CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count raw draws: %w", err)
	}

	cursor, err := m.rawColl(cfg).Find(ctx, filter, options.Find().
		SetSort(bson.D{{Key: "fecha_sorteo", Value: -1}, {Key: "id_sorteo", Value: -1}}).
		SetSkip(int64(page.Offset)).
		SetLimit(int64(page.limit())))
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query raw draws: %w", err)
	}

	if err := cursor.All(ctx, &out); err != nil {
		return nil, 0, fmt.Errorf("failed to decode raw draws: %w", err)
	}

	return out, int(count), nil
}

func (m *Mongo) BetSeries(ctx context.Context, cfg *lottery.Config, window DateWindow) (out []BetPoint, err error) {
	defer func() { m.observe("bet_series", err) }()

	ctx, cancel := m.queryCtx(ctx)
	defer cancel()

	cursor, err := m.rawColl(cfg).Find(ctx, rawWindowFilter(window), options.Find().
		SetSort(bson.D{{Key: "fecha_sorteo", Value: 1}, {Key: "id_sorteo", Value: 1}}).
		SetProjection(bson.M{
			"id_sorteo":    1,
			"fecha_sorteo": 1,
			"apuestas":     1,
			"premios":      1,
			"premio_bote":  1,
		}))
	if err != nil {
		return nil, fmt.Errorf("failed to query bet series: %w", err)
	}

	var raws []draws.RawDraw
	if err := cursor.All(ctx, &raws); err != nil {
		return nil, fmt.Errorf("failed to decode bet series: %w", err)
	}

	return betPoints(raws), nil
}

func (m *Mongo) CommitResult(ctx context.Context, cfg *lottery.Config, res *engine.Result) (err error) {
	defer func() { m.observe("commit_result", err) }()

	ctx, cancel := m.queryCtx(ctx)
	defer cancel()

	snap := res.Snapshot
	if _, err := m.featuresColl(cfg).UpdateOne(ctx,
		bson.M{"draw_id": snap.DrawID},
		bson.M{"$set": SnapshotDocument(cfg, &snap)},
		options.Update().SetUpsert(true)); err != nil {
		return fmt.Errorf("failed to upsert snapshot %s: %w", snap.DrawID, err)
	}

	for _, app := range res.Numbers {
		identity := bson.M{"pool": app.Pool, "number": app.Number}
		if err := m.appendAppearance(ctx, m.numbersColl(cfg), identity, app.Appearance); err != nil {
			return fmt.Errorf("failed to append history for %s %d: %w", app.Pool, app.Number, err)
		}
	}

	for _, app := range res.Combos {
		name, nameErr := ComboName(app.Degree)
		if nameErr != nil {
			return nameErr
		}
		identity := bson.M{"type": name, "scope": cfg.Primary.Name, "combo": app.Combo}
		if err := m.appendAppearance(ctx, m.combosColl(cfg), identity, app.Appearance); err != nil {
			return fmt.Errorf("failed to append history for %s %v: %w", name, app.Combo, err)
		}
	}

	return nil
}

// appendAppearance pushes one log entry unless an entry with the same draw
// index is already present. The document is created on first use so the
// guarded push never has to upsert.
func (m *Mongo) appendAppearance(ctx context.Context, coll *mongo.Collection, identity bson.M, app engine.Appearance) error {
	insert := bson.M{"$setOnInsert": bson.M{"appearances": bson.A{}}}
	if _, err := coll.UpdateOne(ctx, identity, insert, options.Update().SetUpsert(true)); err != nil {
		return err
	}

	guarded := bson.M{}
	for k, v := range identity {
		guarded[k] = v
	}
	guarded["appearances.draw_index"] = bson.M{"$ne": app.DrawIndex}

	_, err := coll.UpdateOne(ctx, guarded,
		bson.M{"$push": bson.M{"appearances": appearanceDocument(app)}})
	return err
}

func (m *Mongo) LastSnapshot(ctx context.Context, cfg *lottery.Config) (snap *engine.Snapshot, err error) {
	defer func() { m.observe("last_snapshot", err) }()

	ctx, cancel := m.queryCtx(ctx)
	defer cancel()

	var doc bson.M
	findErr := m.featuresColl(cfg).FindOne(ctx, bson.M{},
		options.FindOne().SetSort(bson.D{{Key: "draw_index", Value: -1}})).Decode(&doc)
	if errors.Is(findErr, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if findErr != nil {
		return nil, fmt.Errorf("failed to load last snapshot: %w", findErr)
	}

	decoded, err := SnapshotFromDocument(cfg, doc)
	if err != nil {
		return nil, err
	}

	return &decoded, nil
}

func (m *Mongo) ComboLastSeen(ctx context.Context, cfg *lottery.Config) (out map[int]map[engine.Combo]int, err error) {
	defer func() { m.observe("combo_last_seen", err) }()

	ctx, cancel := m.queryCtx(ctx)
	defer cancel()

	cursor, err := m.combosColl(cfg).Find(ctx,
		bson.M{"scope": cfg.Primary.Name},
		options.Find().SetProjection(bson.M{
			"type":        1,
			"combo":       1,
			"appearances": bson.M{"$slice": -1},
		}))
	if err != nil {
		return nil, fmt.Errorf("failed to query combination history: %w", err)
	}

	var docs []struct {
		Type        string   `bson:"type"`
		Combo       []int    `bson:"combo"`
		Appearances []bson.M `bson:"appearances"`
	}
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode combination history: %w", err)
	}

	out = map[int]map[engine.Combo]int{}
	for _, doc := range docs {
		degree, ok := comboDegree(doc.Type)
		if !ok || len(doc.Appearances) == 0 {
			continue
		}

		last, decodeErr := appearanceFromDocument(doc.Appearances[0])
		if decodeErr != nil {
			return nil, decodeErr
		}

		if out[degree] == nil {
			out[degree] = map[engine.Combo]int{}
		}
		out[degree][engine.NewCombo(doc.Combo)] = last.DrawIndex
	}

	return out, nil
}

func (m *Mongo) ResetDerived(ctx context.Context, cfg *lottery.Config) (err error) {
	defer func() { m.observe("reset_derived", err) }()

	ctx, cancel := m.queryCtx(ctx)
	defer cancel()

	for _, coll := range []*mongo.Collection{
		m.featuresColl(cfg), m.numbersColl(cfg), m.combosColl(cfg),
	} {
		if err := coll.Drop(ctx); err != nil {
			return fmt.Errorf("failed to drop %s: %w", coll.Name(), err)
		}
	}

	m.log.WithField("lottery", cfg.Slug).Info("Dropped derived collections")

	return nil
}

func (m *Mongo) Features(ctx context.Context, cfg *lottery.Config, page Page) (out []engine.Snapshot, total int, err error) {
	defer func() { m.observe("features", err) }()

	ctx, cancel := m.queryCtx(ctx)
	defer cancel()

	count, err := m.featuresColl(cfg).CountDocuments(ctx, bson.M{})
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count snapshots: %w", err)
	}

	cursor, err := m.featuresColl(cfg).Find(ctx, bson.M{}, options.Find().
		SetSort(bson.D{{Key: "draw_index", Value: -1}}).
		SetSkip(int64(page.Offset)).
		SetLimit(int64(page.limit())))
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query snapshots: %w", err)
	}

	var docs []bson.M
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, 0, fmt.Errorf("failed to decode snapshots: %w", err)
	}

	out = make([]engine.Snapshot, 0, len(docs))
	for _, doc := range docs {
		snap, decodeErr := SnapshotFromDocument(cfg, doc)
		if decodeErr != nil {
			return nil, 0, decodeErr
		}
		out = append(out, snap)
	}

	return out, int(count), nil
}

func (m *Mongo) NumberHistory(ctx context.Context, cfg *lottery.Config, pool string, number int, window DateWindow) (out []engine.Appearance, err error) {
	defer func() { m.observe("number_history", err) }()

	if _, err := poolByName(cfg, pool); err != nil {
		return nil, err
	}

	ctx, cancel := m.queryCtx(ctx)
	defer cancel()

	var doc struct {
		Appearances []bson.M `bson:"appearances"`
	}
	findErr := m.numbersColl(cfg).FindOne(ctx, bson.M{"pool": pool, "number": number}).Decode(&doc)
	if errors.Is(findErr, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if findErr != nil {
		return nil, fmt.Errorf("failed to load number history: %w", findErr)
	}

	for _, raw := range doc.Appearances {
		app, decodeErr := appearanceFromDocument(raw)
		if decodeErr != nil {
			return nil, decodeErr
		}
		if window.Contains(app.Date) {
			out = append(out, app)
		}
	}

	return out, nil
}

func (m *Mongo) NumberHistoryDates(ctx context.Context, cfg *lottery.Config, pool string) (out map[int][]string, err error) {
	defer func() { m.observe("number_history_dates", err) }()

	if _, err := poolByName(cfg, pool); err != nil {
		return nil, err
	}

	ctx, cancel := m.queryCtx(ctx)
	defer cancel()

	cursor, err := m.numbersColl(cfg).Find(ctx, bson.M{"pool": pool})
	if err != nil {
		return nil, fmt.Errorf("failed to query number history: %w", err)
	}

	var docs []struct {
		Number      int      `bson:"number"`
		Appearances []bson.M `bson:"appearances"`
	}
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode number history: %w", err)
	}

	out = map[int][]string{}
	for _, doc := range docs {
		for _, raw := range doc.Appearances {
			app, decodeErr := appearanceFromDocument(raw)
			if decodeErr != nil {
				return nil, decodeErr
			}
			out[doc.Number] = append(out[doc.Number], app.Date)
		}
	}

	return out, nil
}

func (m *Mongo) LastScrapedDate(ctx context.Context, slug string) (date string, err error) {
	defer func() { m.observe("last_scraped_date", err) }()

	ctx, cancel := m.queryCtx(ctx)
	defer cancel()

	var doc struct {
		LastDrawDate string `bson:"last_draw_date"`
	}
	findErr := m.metadataColl().FindOne(ctx, bson.M{"lottery": slug}).Decode(&doc)
	if errors.Is(findErr, mongo.ErrNoDocuments) {
		return "", nil
	}
	if findErr != nil {
		return "", fmt.Errorf("failed to load scrape metadata: %w", findErr)
	}

	return doc.LastDrawDate, nil
}

func (m *Mongo) SetLastScrapedDate(ctx context.Context, slug, date string) (err error) {
	defer func() { m.observe("set_last_scraped_date", err) }()

	ctx, cancel := m.queryCtx(ctx)
	defer cancel()

	_, err = m.metadataColl().UpdateOne(ctx,
		bson.M{"lottery": slug},
		bson.M{"$set": bson.M{"last_draw_date": date, "updated_at": time.Now().UTC()}},
		options.Update().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("failed to record scrape metadata: %w", err)
	}

	return nil
}
