package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"cloud.google.com/go/civil"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/jhoicas/parametros-credito/internal/application/rates"
	"github.com/jhoicas/parametros-credito/internal/domain/entity"
)

var _ rates.CurrentRateCache = (*RedisRateCache)(nil)

// RedisRateCache guarda la tasa vigente por producto en un hash rates:current:{producto},
// con un campo por fecha consultada, y la generación del producto en rates:gen:{producto}.
// Invalidate incrementa la generación y borra el hash en la misma transacción; Set vigila la
// generación con WATCH y no escribe si cambió desde que el lector la obtuvo.
// Los errores de Redis solo se registran: la caché nunca hace fallar una consulta.
type RedisRateCache struct {
	client redis.UniversalClient
	ttl    time.Duration
	log    zerolog.Logger
}

// Options conexión a Redis.
type Options struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

// NewRedisClient crea el cliente go-redis con las opciones dadas.
func NewRedisClient(opts Options) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})
}

// NewRedisRateCache construye la caché sobre un cliente existente.
func NewRedisRateCache(client redis.UniversalClient, ttl time.Duration, log zerolog.Logger) *RedisRateCache {
	return &RedisRateCache{
		client: client,
		ttl:    ttl,
		log:    log.With().Str("component", "rate_cache").Logger(),
	}
}

// Ambas claves comparten el hash tag {producto}: caen en el mismo slot de Redis Cluster,
// requisito de WATCH/MULTI.
func key(productID string) string {
	return "rates:current:{" + productID + "}"
}

func genKey(productID string) string {
	return "rates:gen:{" + productID + "}"
}

// Get devuelve la tasa guardada para (producto, fecha).
func (c *RedisRateCache) Get(ctx context.Context, productID string, on civil.Date) (*entity.InterestRate, bool) {
	raw, err := c.client.HGet(ctx, key(productID), on.String()).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.log.Warn().Err(err).Str("product_id", productID).Msg("lectura de caché fallida")
		}
		return nil, false
	}
	var rate entity.InterestRate
	if err := json.Unmarshal(raw, &rate); err != nil {
		c.log.Warn().Err(err).Str("product_id", productID).Msg("entrada de caché corrupta")
		return nil, false
	}
	return &rate, true
}

// Generation lee la generación del producto; una clave inexistente es la generación 0.
func (c *RedisRateCache) Generation(ctx context.Context, productID string) (int64, bool) {
	gen, err := c.client.Get(ctx, genKey(productID)).Int64()
	if err != nil && !errors.Is(err, redis.Nil) {
		c.log.Warn().Err(err).Str("product_id", productID).Msg("lectura de generación fallida")
		return 0, false
	}
	return gen, true
}

// Set guarda la tasa vigente para (producto, fecha) y renueva el TTL del hash, solo si la
// generación del producto sigue siendo gen.
func (c *RedisRateCache) Set(ctx context.Context, productID string, on civil.Date, rate *entity.InterestRate, gen int64) {
	raw, err := json.Marshal(rate)
	if err != nil {
		c.log.Warn().Err(err).Str("rate_id", rate.ID).Msg("no se pudo serializar la tasa")
		return
	}
	k, gk := key(productID), genKey(productID)
	err = c.client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, gk).Int64()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if current != gen {
			return errStaleGeneration
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.HSet(ctx, k, on.String(), raw)
			if c.ttl > 0 {
				pipe.Expire(ctx, k, c.ttl)
			}
			return nil
		})
		return err
	}, gk)
	switch {
	case err == nil:
	case errors.Is(err, errStaleGeneration), errors.Is(err, redis.TxFailedErr):
		// Hubo una escritura de tasas después de la lectura: el resultado ya no vale.
		c.log.Debug().Str("product_id", productID).Str("on_date", on.String()).Msg("caché no actualizada: generación cambiada")
	default:
		c.log.Warn().Err(err).Str("product_id", productID).Msg("escritura de caché fallida")
	}
}

var errStaleGeneration = errors.New("generación de caché desactualizada")

// Invalidate incrementa la generación del producto y borra todas sus fechas guardadas.
func (c *RedisRateCache) Invalidate(ctx context.Context, productID string) {
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, genKey(productID))
		pipe.Del(ctx, key(productID))
		return nil
	})
	if err != nil {
		c.log.Warn().Err(err).Str("product_id", productID).Msg("invalidación de caché fallida")
	}
}
