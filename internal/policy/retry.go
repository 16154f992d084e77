package policy

import (
	"context"
	"errors"
)

// RetryOnConflict executa write; se houver conflito e a linha ainda existir,
// tenta mais uma vez. write deve recarregar os dados atuais a cada chamada.
func RetryOnConflict(ctx context.Context, write func(context.Context) error, exists func(context.Context) (bool, error)) error {
	err := write(ctx)
	if !errors.Is(err, ErrConflict) {
		return err
	}

	ok, xerr := exists(ctx)
	if xerr != nil {
		return xerr
	}
	if !ok {
		return ErrNotFound
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return write(ctx)
}
