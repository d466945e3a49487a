package models

// Account is the resolved principal for either account kind. It replaces an
// inheritance hierarchy with a closed set of variants: exactly one of
// Trainee or Trainer is set, matching the Role tag.
type Account struct {
	Role    Role
	Trainee *Trainee
	Trainer *Trainer
}

// TraineeAccount wraps a trainee as an account variant.
func TraineeAccount(t *Trainee) Account {
	return Account{Role: RoleTrainee, Trainee: t}
}

// TrainerAccount wraps a trainer as an account variant.
func TrainerAccount(t *Trainer) Account {
	return Account{Role: RoleTrainer, Trainer: t}
}

// User returns the shared columns of whichever variant is set.
func (a Account) User() *User {
	switch a.Role {
	case RoleTrainee:
		if a.Trainee != nil {
			return &a.Trainee.User
		}
	case RoleTrainer:
		if a.Trainer != nil {
			return &a.Trainer.User
		}
	}
	return nil
}

// Username is a convenience accessor; empty when the account is unset.
func (a Account) Username() string {
	if u := a.User(); u != nil {
		return u.Username
	}
	return ""
}
